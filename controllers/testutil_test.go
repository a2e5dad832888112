package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/multiblog/config"
	"github.com/cppla/multiblog/models"
	"github.com/cppla/multiblog/routes"
	"github.com/cppla/multiblog/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("GIN_MODE", "test")
	os.Setenv("LOG_LEVEL", "error")
	os.Setenv("RATE_LIMIT_PER_MINUTE", "100000")
	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestRouter builds the full router against a fresh in-memory database.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Admin{}, &models.Blog{}, &models.Post{}, &models.Comment{}))

	return routes.SetupRouter(db), db
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doJSON performs a request against the router; token is optional.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// newRawAuthRequest builds a request carrying a verbatim Authorization header.
func newRawAuthRequest(method, path, authHeader string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return req
}

func serveRaw(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the response envelope's data field into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

// registerAndLogin creates an admin and returns its id and session token.
func registerAndLogin(t *testing.T, r *gin.Engine, email, password, name string) (adminID, token string) {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/admin/register", "", gin.H{
		"email": email, "password": password, "name": name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var reg struct {
		Admin models.Admin `json:"admin"`
	}
	decodeData(t, rec, &reg)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/admin/login", "", gin.H{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string       `json:"token"`
		Admin models.Admin `json:"admin"`
	}
	decodeData(t, rec, &login)
	require.NotEmpty(t, login.Token)
	require.Equal(t, reg.Admin.ID, login.Admin.ID)

	return reg.Admin.ID, login.Token
}

// createBlog creates a blog for the token holder and returns it.
func createBlog(t *testing.T, r *gin.Engine, token, name string, categories []string) models.Blog {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/blogs", token, gin.H{
		"name": name, "categories": categories,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Blog models.Blog `json:"blog"`
	}
	decodeData(t, rec, &resp)
	require.NotEmpty(t, resp.Blog.ID)
	return resp.Blog
}

// createPost creates a post under the blog and returns it.
func createPost(t *testing.T, r *gin.Engine, token, blogID, title, category string) models.Post {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/api/v1/blogs/"+blogID+"/posts", token, gin.H{
		"title": title, "content": "content of " + title, "category": category,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Post models.Post `json:"post"`
	}
	decodeData(t, rec, &resp)
	require.NotEmpty(t, resp.Post.ID)
	return resp.Post
}

// createComment adds an anonymous comment and returns it.
func createComment(t *testing.T, r *gin.Engine, postID, name, content string) models.Comment {
	t.Helper()

	body := gin.H{"content": content}
	if name != "" {
		body["name"] = name
	}
	rec := doJSON(t, r, http.MethodPost, "/api/v1/posts/"+postID+"/comments", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Comment models.Comment `json:"comment"`
	}
	decodeData(t, rec, &resp)
	return resp.Comment
}
