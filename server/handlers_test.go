package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/bacon13/picfeed/feed"
	"github.com/bacon13/picfeed/file_store"
	"github.com/bacon13/picfeed/ingestion"
	"github.com/bacon13/picfeed/repository"
	"github.com/bacon13/picfeed/utils"
	"github.com/bacon13/picfeed/utils/dotenv"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testMaxImageBytes = 5 << 20

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	dotenv.LoadDotEnvsInTests()
	os.Exit(m.Run())
}

// newTestRouter wires the full serving stack against a temp database and an
// in-memory image store, with the session gate bypassed: handlers read the
// caller identity from the "sub" header as-is.
func newTestRouter(t *testing.T) (*gin.Engine, *file_store.FakeImageStore, *gorm.DB) {
	db, _ := utils.CreateTempDB(t)
	store := file_store.NewFakeImageStore()
	posts := repository.NewPostRepository(db)
	users := repository.NewUserRepository(db)
	ingest := ingestion.NewService(store, posts, testMaxImageBytes)
	engine := feed.NewEngine(posts)

	router := gin.New()
	router.GET("/health", HealthHandler())
	router.GET("/feed", FeedHandler(engine))
	router.POST("/posts", CreatePostHandler(ingest, testMaxImageBytes))
	router.GET("/posts/mine", UserPostsHandler(engine))
	router.POST("/verify", VerifyHandler(users))
	router.GET("/profile", GetProfileHandler(users))
	router.PUT("/profile", UpdateProfileHandler(users))
	return router, store, db
}

func multipartImage(t *testing.T, fileName string, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, fileName))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func doUpload(router *gin.Engine, sub string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/posts", body)
	req.Header.Set("Content-Type", contentType)
	if sub != "" {
		req.Header.Set("sub", sub)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type postViewResp struct {
	Success bool     `json:"success"`
	Data    postView `json:"data"`
}

type pageViewResp struct {
	Success bool     `json:"success"`
	Data    pageView `json:"data"`
}

func TestUploadThenListOwnPosts(t *testing.T) {
	router, store, _ := newTestRouter(t)

	payload := make([]byte, 2<<20)
	body, contentType := multipartImage(t, "cat.jpg", "image/jpeg", payload)
	w := doUpload(router, "user-1", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code)

	var created postViewResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.True(t, created.Success)
	require.Equal(t, "user-1", created.Data.OwnerId)
	require.NotEmpty(t, created.Data.Id)
	// The wire-level locator is a fetchable URL resolving to the uploaded
	// bytes, never a bare storage key.
	require.True(t, strings.HasPrefix(created.Data.ImageLocator, file_store.FakeUrlPrefix))
	data, ok := store.ObjectByUrl(created.Data.ImageLocator)
	require.True(t, ok)
	require.Equal(t, payload, data)

	req := httptest.NewRequest("GET", "/posts/mine", nil)
	req.Header.Set("sub", "user-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var page pageViewResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Equal(t, 1, len(page.Data.Items))
	require.Equal(t, created.Data.Id, page.Data.Items[0].Id)
	require.Nil(t, page.Data.NextCursor)
}

func TestUploadRejectsNonImage(t *testing.T) {
	router, _, db := newTestRouter(t)

	body, contentType := multipartImage(t, "note.txt", "text/plain", []byte("hello"))
	w := doUpload(router, "user-1", body, contentType)
	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	var count int64
	db.Table("posts").Count(&count)
	require.Equal(t, int64(0), count)
}

func TestUploadRejectsOversized(t *testing.T) {
	router, store, db := newTestRouter(t)

	body, contentType := multipartImage(t, "big.jpg", "image/jpeg", make([]byte, testMaxImageBytes+1))
	w := doUpload(router, "user-1", body, contentType)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	require.Empty(t, store.Objects)
	var count int64
	db.Table("posts").Count(&count)
	require.Equal(t, int64(0), count)
}

func TestUploadRequiresIdentity(t *testing.T) {
	router, store, db := newTestRouter(t)

	body, contentType := multipartImage(t, "cat.jpg", "image/jpeg", []byte("x"))
	w := doUpload(router, "", body, contentType)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	require.Empty(t, store.Objects)
	var count int64
	db.Table("posts").Count(&count)
	require.Equal(t, int64(0), count)
}

func TestFeedPagination(t *testing.T) {
	router, _, db := newTestRouter(t)

	repo := repository.NewPostRepository(db)
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 25; i++ {
		_, err := repo.Insert(context.Background(), "user-1", fmt.Sprintf("k%d", i), base.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/feed?limit=20", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var page1 pageViewResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page1))
	require.Equal(t, 20, len(page1.Data.Items))
	require.NotNil(t, page1.Data.NextCursor)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/feed?limit=20&cursor="+*page1.Data.NextCursor, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var page2 pageViewResp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page2))
	require.Equal(t, 5, len(page2.Data.Items))
	require.Nil(t, page2.Data.NextCursor)
}

func TestFeedRejectsMalformedCursor(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/feed?cursor=%21%21%21", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfileWithoutRecordIs404(t *testing.T) {
	router, _, _ := newTestRouter(t)

	update := bytes.NewBufferString(`{"profile_images": ["a.jpg"]}`)
	req := httptest.NewRequest("PUT", "/profile", update)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("sub", "never-verified")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestVerifyThenProfileRoundTrip(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/verify", nil)
	req.Header.Set("sub", "sub-1")
	req.Header.Set("email", "a@example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	update := bytes.NewBufferString(`{"profile_images": ["posts/sub-1/1_a.jpg"]}`)
	req = httptest.NewRequest("PUT", "/profile", update)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("sub", "sub-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", "/profile", nil)
	req.Header.Set("sub", "sub-1")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool     `json:"success"`
		Data    userView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "a@example.com", resp.Data.Email)
	require.Equal(t, []string{"posts/sub-1/1_a.jpg"}, resp.Data.ProfileImages)
}
