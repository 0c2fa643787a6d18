package middlewares

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/bacon13/picfeed/utils"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"
)

var (
	// cognitoClient is a thread safe client that performs user authorization
	// based on the access token. Before using this client, make sure it's
	// initialized correctly.
	cognitoClient *cognitoidentityprovider.Client
)

// Setup initialized all package scoped variables that are needed to perform
// middleware functionalities, such as Cognito client. This function must be
// called before any middleware is used.
func Setup() {
	client, err := createCognitoClient()
	if err != nil {
		// Abort directly if the Cognito isn't setup successfully, which is crucial
		// for server side authorization.
		log.Fatalf("fail to setup Cognito client: %s", err.Error())
	}
	setCognitoClient(client)
}

// createCognitoClient creates a default client with aws config located in path
// ~/.aws/config, and return error on error.
func createCognitoClient() (*cognitoidentityprovider.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		return nil, err
	}
	return cognitoidentityprovider.NewFromConfig(cfg), nil
}

func setCognitoClient(client *cognitoidentityprovider.Client) {
	cognitoClient = client
}

// SessionGate reads the bearer access token from the Authorization header,
// validates it against the identity provider and stamps the verified subject
// id and email into the "sub" and "email" request headers for downstream
// handlers. It aborts with 401 on a missing or invalid token.
func SessionGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))

		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  "empty access token",
			})
			c.Abort()
			return
		}

		user, err := cognitoClient.GetUser(c.Request.Context(), &cognitoidentityprovider.GetUserInput{AccessToken: &token})

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code": utils.ErrorTokenAuthFail,
				"msg":  err.Error(),
			})
			c.Abort()
			return
		}

		// Successfully validated the token. Replace any caller-supplied
		// identity headers with the verified ones.
		c.Request.Header.Del("sub")
		c.Request.Header.Del("email")
		c.Request.Header.Add("sub", *user.Username)
		for _, attr := range user.UserAttributes {
			if attr.Name != nil && *attr.Name == "email" && attr.Value != nil {
				c.Request.Header.Add("email", *attr.Value)
			}
		}

		c.Next()
	}
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return header[len("Bearer "):]
	}
	return header
}
