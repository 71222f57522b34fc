package testapi

import (
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SeedUser registers an account directly and returns its id.
func (s *Server) SeedUser(email, password, firstName, lastName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &user{
		ID:        s.id("u"),
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	return u.ID
}

// SeedFollow records follower → followee directly.
func (s *Server) SeedFollow(followerID, followeeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.follows[followerID] == nil {
		s.follows[followerID] = make(map[string]bool)
	}
	s.follows[followerID][followeeID] = true
}

// Token mints a valid bearer token for a seeded user.
func (s *Server) Token(userID string) string {
	return issueToken(userID, time.Now().Add(time.Hour))
}

func profileJSON(u *user) gin.H {
	return gin.H{
		"_id":        u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"bio":        u.Bio,
		"avatar":     u.AvatarID,
		"createdAt":  u.CreatedAt,
	}
}

func summaryJSON(u *user) gin.H {
	return gin.H{
		"_id":        u.ID,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"avatar":     u.AvatarID,
	}
}

type credentials struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

func (s *Server) signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	for _, u := range s.users {
		if u.Email == req.Email {
			s.mu.Unlock()
			respond(c, http.StatusConflict, "Email already in use", nil)
			return
		}
	}
	u := &user{
		ID:        s.id("u"),
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	s.mu.Unlock()

	respond(c, http.StatusCreated, "Account created", gin.H{
		"user":  profileJSON(u),
		"token": issueToken(u.ID, time.Now().Add(time.Hour)),
	})
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if u.Email == req.Email && u.Password == req.Password {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		respond(c, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	respond(c, http.StatusOK, "Logged in", gin.H{
		"user":  profileJSON(found),
		"token": issueToken(found.ID, time.Now().Add(time.Hour)),
	})
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	u, ok := s.users[c.Param("id")]
	s.mu.Unlock()
	if !ok {
		respond(c, http.StatusNotFound, "User not found", nil)
		return
	}
	respond(c, http.StatusOK, "", profileJSON(u))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Bio       string `json:"bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	u := s.users[viewerID(c)]
	if req.FirstName != "" {
		u.FirstName = req.FirstName
	}
	if req.LastName != "" {
		u.LastName = req.LastName
	}
	if req.Bio != "" {
		u.Bio = req.Bio
	}
	s.mu.Unlock()

	respond(c, http.StatusOK, "Profile updated", profileJSON(u))
}

func (s *Server) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		respond(c, http.StatusBadRequest, "avatar file required", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer src.Close()
	data, _ := io.ReadAll(src)

	s.mu.Lock()
	u := s.users[viewerID(c)]
	u.AvatarID = file.Filename
	s.images[file.Filename] = data
	s.mu.Unlock()

	respond(c, http.StatusOK, "Avatar updated", profileJSON(u))
}

func (s *Server) searchUsers(c *gin.Context) {
	q := strings.ToLower(c.Query("q"))
	page, limit := pageParams(c)

	s.mu.Lock()
	var matches []gin.H
	for _, u := range s.sortedUsers() {
		hay := strings.ToLower(u.Email + " " + u.FirstName + " " + u.LastName)
		if strings.Contains(hay, q) {
			matches = append(matches, summaryJSON(u))
		}
	}
	s.mu.Unlock()

	respond(c, http.StatusOK, "", paginate(matches, page, limit))
}

func (s *Server) suggestedUsers(c *gin.Context) {
	viewer := viewerID(c)
	s.mu.Lock()
	var out []gin.H
	for _, u := range s.sortedUsers() {
		if u.ID != viewer && !s.follows[viewer][u.ID] {
			out = append(out, summaryJSON(u))
		}
		if len(out) == 5 {
			break
		}
	}
	s.mu.Unlock()
	respond(c, http.StatusOK, "", out)
}

func (s *Server) follow(c *gin.Context) {
	target := c.Param("id")
	viewer := viewerID(c)
	if target == viewer {
		respond(c, http.StatusBadRequest, "Cannot follow yourself", nil)
		return
	}

	s.mu.Lock()
	_, exists := s.users[target]
	if exists {
		if s.follows[viewer] == nil {
			s.follows[viewer] = make(map[string]bool)
		}
		s.follows[viewer][target] = true
	}
	s.mu.Unlock()

	if !exists {
		respond(c, http.StatusNotFound, "User not found", nil)
		return
	}
	respond(c, http.StatusOK, "Followed", nil)
}

func (s *Server) unfollow(c *gin.Context) {
	s.mu.Lock()
	delete(s.follows[viewerID(c)], c.Param("id"))
	s.mu.Unlock()
	respond(c, http.StatusOK, "Unfollowed", nil)
}

func (s *Server) followStatus(c *gin.Context) {
	target := c.Param("id")
	viewer := viewerID(c)

	s.mu.Lock()
	var followers, following int
	for _, edges := range s.follows {
		if edges[target] {
			followers++
		}
	}
	following = len(s.follows[target])
	isFollowing := s.follows[viewer][target]
	s.mu.Unlock()

	respond(c, http.StatusOK, "", gin.H{
		"followers":    followers,
		"following":    following,
		"is_following": isFollowing,
	})
}

func (s *Server) listFollowers(c *gin.Context) {
	target := c.Param("id")
	page, limit := pageParams(c)

	s.mu.Lock()
	var out []gin.H
	for _, u := range s.sortedUsers() {
		if s.follows[u.ID][target] {
			out = append(out, summaryJSON(u))
		}
	}
	s.mu.Unlock()

	respond(c, http.StatusOK, "", paginate(out, page, limit))
}

func (s *Server) listFollowing(c *gin.Context) {
	target := c.Param("id")
	page, limit := pageParams(c)

	s.mu.Lock()
	var out []gin.H
	for _, u := range s.sortedUsers() {
		if s.follows[target][u.ID] {
			out = append(out, summaryJSON(u))
		}
	}
	s.mu.Unlock()

	respond(c, http.StatusOK, "", paginate(out, page, limit))
}

// sortedUsers returns users in creation order. Caller holds s.mu.
func (s *Server) sortedUsers() []*user {
	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
