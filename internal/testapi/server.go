// Package testapi is an in-process stand-in for the remote social API,
// used by client and end-to-end tests. It mirrors the production response
// envelope, bearer auth and pagination so the client code under test
// cannot tell the difference.
package testapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const secret = "testapi-secret"

type user struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Bio       string
	AvatarID  string
	CreatedAt time.Time
}

type post struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Images    []imageMeta
	CreatedAt time.Time
	UpdatedAt time.Time
}

type imageMeta struct {
	FileID      string `json:"fileId"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type comment struct {
	ID        string
	PostID    string
	UserID    string
	Content   string
	CreatedAt time.Time
}

// Server is one fake API instance backed by in-memory state.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	users    map[string]*user
	posts    []*post // newest first
	comments []*comment
	likes    map[string]map[string]bool // postID -> userID -> liked
	follows  map[string]map[string]bool // follower -> followee -> true
	images   map[string][]byte          // filename -> content
	hits     map[string]int             // "METHOD route" -> count

	// FailNext makes the next matching mutation return 500 with this
	// message, then clears itself. Lets tests exercise rollback paths.
	failNext string
}

func New() *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		users:   make(map[string]*user),
		likes:   make(map[string]map[string]bool),
		follows: make(map[string]map[string]bool),
		images:  make(map[string][]byte),
		hits:    make(map[string]int),
	}

	r := gin.New()
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(s.countHits())

	r.POST("/api/user/signup", s.signup)
	r.POST("/api/user/login", s.login)

	posts := r.Group("/api/posts")
	{
		posts.GET("", s.listPosts)
		posts.GET("/feed", s.auth(true), s.feed)
		posts.GET("/user/:id", s.userPosts)
		posts.GET("/:id", s.getPost)
		posts.POST("", s.auth(true), s.createPost)
		posts.PATCH("/:id", s.auth(true), s.updatePost)
		posts.DELETE("/:id", s.auth(true), s.deletePost)
		posts.POST("/:id/like", s.auth(true), s.toggleLike)
		posts.GET("/:id/comments", s.listComments)
		posts.POST("/:id/comments", s.auth(true), s.createComment)
		posts.DELETE("/comments/:id", s.auth(true), s.deleteComment)
		posts.POST("/batch/engagement", s.auth(false), s.batchEngagement)
		posts.GET("/image/:filename", s.serveImage)
	}

	users := r.Group("/api/users")
	{
		users.GET("/search", s.searchUsers)
		users.GET("/suggested", s.auth(true), s.suggestedUsers)
		users.PATCH("/profile", s.auth(true), s.updateProfile)
		users.POST("/avatar", s.auth(true), s.uploadAvatar)
		users.GET("/:id", s.getUser)
		users.POST("/:id/follow", s.auth(true), s.follow)
		users.DELETE("/:id/follow", s.auth(true), s.unfollow)
		users.GET("/:id/follow/status", s.auth(false), s.followStatus)
		users.GET("/:id/followers", s.listFollowers)
		users.GET("/:id/following", s.listFollowing)
	}

	s.Server = httptest.NewServer(r)
	return s
}

// Hits reports how many requests matched the given "METHOD path" route,
// e.g. "GET /api/posts".
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// FailNextMutation makes the next POST/PATCH/DELETE return a 500 carrying
// msg as the envelope message.
func (s *Server) FailNextMutation(msg string) {
	s.mu.Lock()
	s.failNext = msg
	s.mu.Unlock()
}

func (s *Server) countHits() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.hits[c.Request.Method+" "+c.FullPath()]++
		fail := ""
		if c.Request.Method != http.MethodGet && s.failNext != "" {
			fail = s.failNext
			s.failNext = ""
		}
		s.mu.Unlock()
		if fail != "" {
			respond(c, http.StatusInternalServerError, fail, nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// auth resolves the bearer token into a user id. When required is false a
// missing token just leaves the viewer anonymous.
func (s *Server) auth(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				respond(c, http.StatusUnauthorized, "Authentication required", nil)
				c.Abort()
			}
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")
		parsed, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return []byte(secret), nil })
		if err != nil || !parsed.Valid {
			respond(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}
		claims := parsed.Claims.(jwt.MapClaims)
		c.Set("user_id", claims["user_id"].(string))
	}
}

func viewerID(c *gin.Context) string {
	id, _ := c.Get("user_id")
	s, _ := id.(string)
	return s
}

func respond(c *gin.Context, status int, message string, data any) {
	kind := "success"
	if status >= 400 {
		kind = "error"
	}
	c.JSON(status, gin.H{"status": kind, "message": message, "data": data})
}

func (s *Server) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s%04d", prefix, s.nextID)
}

func issueToken(userID string, expiresAt time.Time) string {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     expiresAt.Unix(),
	})
	signed, _ := tok.SignedString([]byte(secret))
	return signed
}

// pageParams reads the shared page/limit query values.
func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func paginate[T any](items []T, page, limit int) gin.H {
	total := len(items)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return gin.H{
		"items":      items[start:end],
		"pagination": gin.H{"page": page, "limit": limit, "total": total, "pages": pages},
	}
}
