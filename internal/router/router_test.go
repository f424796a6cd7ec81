package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-go/internal/config"
	"task-go/internal/models"
	"task-go/internal/repository"
	"task-go/internal/service"
	"task-go/internal/testutil"
	"task-go/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	store  *repository.Store
	jwt    *utils.JWTManager
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	return newAPIWithRedis(t, nil)
}

func newAPIWithRedis(t *testing.T, redisClient *redis.Client) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Redis: config.RedisConfig{StatsCacheSeconds: 300},
		CORS: config.CORSConfig{
			Origins:      []string{"http://localhost:3000"},
			AllowMethods: []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders: []string{"Content-Type", "Authorization", "X-Admin-ID"},
		},
	}
	store := testutil.NewStore(t)
	jwtManager := utils.NewJWTManager("router-secret", "HS256", time.Hour)
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.PanicLevel)

	auth := service.NewAuthService(store, jwtManager, nil, nil, nil)
	require.NoError(t, auth.InitAdmin(context.Background(), &config.AdminConfig{
		Username: "root", Email: "root@example.com", Password: "rootpass",
	}))

	return &apiClient{
		t:      t,
		router: SetupRouter(cfg, jwtManager, logger, store, redisClient, nil),
		store:  store,
		jwt:    jwtManager,
	}
}

func (a *apiClient) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func (a *apiClient) login(identifier, password string) (token, id string) {
	a.t.Helper()
	w, body := a.do(http.MethodPost, "/api/users/login", "", map[string]string{"username": identifier, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return body["access_token"].(string), body["id"].(string)
}

func (a *apiClient) signup(username string) (token, id string) {
	a.t.Helper()
	w, body := a.do(http.MethodPost, "/api/users", "", map[string]string{
		"username": username, "email": username + "@example.com", "password": "password1",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return body["access_token"].(string), body["id"].(string)
}

func TestHealth(t *testing.T) {
	api := newAPI(t)
	w, body := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestSignupAndLogin(t *testing.T) {
	api := newAPI(t)
	_, id := api.signup("alice")

	w, body := api.do(http.MethodPost, "/api/users", "", map[string]string{
		"username": "alice", "email": "alice@example.com", "password": "password1",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.EqualValues(t, 400, body["code"])

	w, body = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "alice@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "bearer", body["token_type"])
	assert.NotContains(t, body, "password_hash")
	assert.NotContains(t, body, "password")

	w, body = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"email": "bad@x.com", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid credentials", body["error"])
}

func TestRequestValidation(t *testing.T) {
	api := newAPI(t)
	token, _ := api.signup("alice")

	w, _ := api.do(http.MethodPost, "/api/tasks", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/api/tasks", token, `{"title": 42}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := api.do(http.MethodPost, "/api/tasks", token, map[string]interface{}{"title": "x", "colour": "red"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["error"], "colour")

	w, _ = api.do(http.MethodPut, "/api/tasks/abc", token, map[string]interface{}{"deadline": "next tuesday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = api.do(http.MethodPost, "/api/users", "", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskAndCategoryLifecycle(t *testing.T) {
	api := newAPI(t)
	token, userID := api.signup("alice")

	w, cat := api.do(http.MethodPost, "/api/categories", token, map[string]string{"name": "Home"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	catID := cat["id"].(string)
	assert.Equal(t, userID, cat["user_id"])
	assert.EqualValues(t, 0, cat["task_count"])

	w, task := api.do(http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"title": "Clean", "category_id": catID, "deadline": "2030-01-02",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	taskID := task["id"].(string)
	assert.Equal(t, "pending", task["status"])
	assert.Equal(t, false, task["completed"])
	assert.Equal(t, "medium", task["priority"])
	assert.Equal(t, []interface{}{}, task["tags"])

	_, cat = api.do(http.MethodGet, "/api/categories/"+catID, token, nil)
	assert.EqualValues(t, 1, cat["task_count"])

	w, body := api.do(http.MethodDelete, "/api/categories/"+catID, token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "category has existing tasks", body["error"])

	w, task = api.do(http.MethodPut, "/api/tasks/"+taskID, token, map[string]interface{}{"completed": true, "tags": []string{"a", "a"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", task["status"])
	assert.Equal(t, []interface{}{"a"}, task["tags"])

	w, _ = api.do(http.MethodPut, "/api/tasks/"+taskID, token, map[string]interface{}{"completed": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, task = api.do(http.MethodPut, "/api/tasks/"+taskID, token, `{"category_id": null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, task["category_id"])

	_, cat = api.do(http.MethodGet, "/api/categories/"+catID, token, nil)
	assert.EqualValues(t, 0, cat["task_count"])

	w, _ = api.do(http.MethodDelete, "/api/categories/"+catID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(http.MethodGet, "/api/tasks/"+taskID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUsesTokenOwner(t *testing.T) {
	api := newAPI(t)
	alice, _ := api.signup("alice")
	bob, bobID := api.signup("bob")

	api.do(http.MethodPost, "/api/tasks", alice, map[string]string{"title": "a"})
	api.do(http.MethodPost, "/api/tasks", bob, map[string]string{"title": "b"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+bob)
	api.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, bobID, tasks[0]["user_id"])

	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 2)
}

func TestUpdateUser(t *testing.T) {
	api := newAPI(t)
	alice, aliceID := api.signup("alice")
	bob, _ := api.signup("bob")

	w, _ := api.do(http.MethodPut, "/api/users/"+aliceID, bob, map[string]interface{}{"settings": map[string]string{"theme": "dark"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := api.do(http.MethodPut, "/api/users/"+aliceID, alice, map[string]interface{}{"settings": map[string]string{"theme": "dark"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]interface{}{"theme": "dark"}, body["settings"])

	w, _ = api.do(http.MethodPut, "/api/users/"+aliceID, alice, map[string]interface{}{"password": "newpass1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodPut, "/api/users/"+aliceID, alice, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeRequiresToken(t *testing.T) {
	api := newAPI(t)
	token, id := api.signup("alice")

	w, body := api.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, body["id"])
	assert.Equal(t, "alice", body["username"])

	w, _ = api.do(http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/api/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateOtherUserChecksStoredRole(t *testing.T) {
	api := newAPI(t)
	_, aliceID := api.signup("alice")
	_, bobID := api.signup("bob")
	rootToken, rootID := api.login("root", "rootpass")
	settings := map[string]interface{}{"settings": map[string]string{"theme": "dark"}}

	w, _ := api.do(http.MethodPut, "/api/users/"+aliceID, rootToken, settings)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 伪造 role=admin 的Token不被信任
	forged, err := api.jwt.GenerateToken(bobID, "bob", models.RoleAdmin)
	require.NoError(t, err)
	w, _ = api.do(http.MethodPut, "/api/users/"+aliceID, forged, map[string]interface{}{"settings": map[string]string{"theme": "light"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 降级后旧Token失去管理员能力
	require.NoError(t, api.store.Users.Updates(context.Background(), rootID, map[string]interface{}{"role": models.RoleUser}))
	w, _ = api.do(http.MethodPut, "/api/users/"+aliceID, rootToken, map[string]interface{}{"settings": map[string]string{"theme": "light"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutes(t *testing.T) {
	api := newAPI(t)
	userToken, userID := api.signup("alice")
	adminToken, adminID := api.login("root", "rootpass")

	w, body := api.do(http.MethodGet, "/api/admin/stats", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.EqualValues(t, 403, body["code"])

	w, _ = api.do(http.MethodGet, "/api/admin/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = api.do(http.MethodGet, "/api/admin/stats?admin_id=nobody", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = api.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, body["users"])
	assert.EqualValues(t, 50, body["user_stats"].(map[string]interface{})["admin_ratio"])

	w, _ = api.do(http.MethodGet, "/api/admin/stats?admin_id="+adminID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.do(http.MethodGet, "/api/users", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, task := api.do(http.MethodPost, "/api/tasks", userToken, map[string]string{"title": "x"})

	w, body = api.do(http.MethodGet, "/api/admin/tasks?page=1&per_page=10", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 10, body["per_page"])

	w, _ = api.do(http.MethodDelete, "/api/admin/tasks/"+task["id"].(string), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(http.MethodPost, "/api/admin/categories/reconcile", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/admin/users/"+adminID, adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = api.do(http.MethodDelete, "/api/admin/users/"+userID, "", map[string]string{"admin_id": adminID})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = api.do(http.MethodGet, "/api/users/"+userID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsCacheFollowsWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	api := newAPIWithRedis(t, client)
	userToken, _ := api.signup("alice")
	adminToken, _ := api.login("root", "rootpass")

	taskTotal := func() float64 {
		w, body := api.do(http.MethodGet, "/api/admin/stats", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return body["tasks"].(float64)
	}

	assert.EqualValues(t, 0, taskTotal())
	assert.True(t, mr.Exists(service.StatsCacheKey))

	w, task := api.do(http.MethodPost, "/api/tasks", userToken, map[string]string{"title": "x"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, mr.Exists(service.StatsCacheKey))
	assert.EqualValues(t, 1, taskTotal())

	// 失败的写请求不清除缓存
	w, _ = api.do(http.MethodPost, "/api/tasks", userToken, map[string]string{"title": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, mr.Exists(service.StatsCacheKey))

	w, _ = api.do(http.MethodDelete, "/api/tasks/"+task["id"].(string), userToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.EqualValues(t, 0, taskTotal())

	w, _ = api.do(http.MethodPost, "/api/users/login", "", map[string]string{"username": "alice", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mr.Exists(service.StatsCacheKey))
}
