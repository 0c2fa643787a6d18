package main

import (
	"os"
	"strconv"

	"github.com/bacon13/picfeed/feed"
	"github.com/bacon13/picfeed/file_store"
	"github.com/bacon13/picfeed/ingestion"
	"github.com/bacon13/picfeed/repository"
	"github.com/bacon13/picfeed/server"
	"github.com/bacon13/picfeed/server/middlewares"
	. "github.com/bacon13/picfeed/utils"
	"github.com/bacon13/picfeed/utils/dotenv"
	. "github.com/bacon13/picfeed/utils/flag"
	. "github.com/bacon13/picfeed/utils/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func cleanup() {
	CloseProfiler()
	CloseTracer()
	Log.Info("api server shutdown")
}

func newImageStore() file_store.ImageStore {
	if dotenv.GetDeploymentEnv() == dotenv.ProdEnv {
		store, err := file_store.NewS3ImageStore(file_store.ProdS3ImageBucket)
		if err != nil {
			Log.Fatal("fail to create s3 image store: ", err)
		}
		return store
	}
	store, err := file_store.NewLocalImageStore(file_store.TestS3Bucket)
	if err != nil {
		Log.Fatal("fail to create local image store: ", err)
	}
	return store
}

func maxImageBytes() int64 {
	if raw := os.Getenv("MAX_IMAGE_BYTES"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			return v
		}
		Log.Warn("ignoring invalid MAX_IMAGE_BYTES: ", os.Getenv("MAX_IMAGE_BYTES"))
	}
	return ingestion.DefaultMaxImageBytes
}

func main() {
	defer cleanup()

	Parse()
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	StartTracer()
	StartProfiler()
	if !ByPassAuth {
		middlewares.Setup()
	}

	db, err := GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect to database: ", err)
	}
	DatabaseSetupAndMigration(db)

	store := newImageStore()
	defer store.CleanUp()

	imageCap := maxImageBytes()
	posts := repository.NewPostRepository(db)
	users := repository.NewUserRepository(db)
	ingest := ingestion.NewService(store, posts, imageCap)
	engine := feed.NewEngine(posts)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(ServiceName))

	router.GET("/health", server.HealthHandler())
	router.GET("/feed", server.FeedHandler(engine))

	authed := router.Group("/")
	if !ByPassAuth {
		authed.Use(middlewares.SessionGate())
	}
	authed.POST("/posts", server.CreatePostHandler(ingest, imageCap))
	authed.GET("/posts/mine", server.UserPostsHandler(engine))
	authed.POST("/verify", server.VerifyHandler(users))
	authed.GET("/profile", server.GetProfileHandler(users))
	authed.PUT("/profile", server.UpdateProfileHandler(users))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	Log.Info("api server starts up")
	router.Run(":" + port)
}
