package testapi

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SeedPost inserts a post directly and returns its id.
func (s *Server) SeedPost(userID, title, content string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &post{
		ID:        s.id("p"),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.posts = append([]*post{p}, s.posts...)
	return p.ID
}

func postJSON(p *post) gin.H {
	images := make([]imageMeta, len(p.Images))
	copy(images, p.Images)
	return gin.H{
		"_id":       p.ID,
		"title":     p.Title,
		"content":   p.Content,
		"user_id":   p.UserID,
		"images":    images,
		"createdAt": p.CreatedAt,
		"updatedAt": p.UpdatedAt,
	}
}

func (s *Server) listPosts(c *gin.Context) {
	page, limit := pageParams(c)
	s.mu.Lock()
	out := make([]gin.H, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, postJSON(p))
	}
	s.mu.Unlock()
	respond(c, http.StatusOK, "", paginate(out, page, limit))
}

func (s *Server) feed(c *gin.Context) {
	viewer := viewerID(c)
	page, limit := pageParams(c)

	s.mu.Lock()
	var out []gin.H
	for _, p := range s.posts {
		if p.UserID == viewer || s.follows[viewer][p.UserID] {
			out = append(out, postJSON(p))
		}
	}
	s.mu.Unlock()

	respond(c, http.StatusOK, "", paginate(out, page, limit))
}

func (s *Server) userPosts(c *gin.Context) {
	target := c.Param("id")
	page, limit := pageParams(c)

	s.mu.Lock()
	var out []gin.H
	for _, p := range s.posts {
		if p.UserID == target {
			out = append(out, postJSON(p))
		}
	}
	s.mu.Unlock()

	respond(c, http.StatusOK, "", paginate(out, page, limit))
}

func (s *Server) getPost(c *gin.Context) {
	s.mu.Lock()
	p := s.findPost(c.Param("id"))
	s.mu.Unlock()
	if p == nil {
		respond(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	respond(c, http.StatusOK, "", postJSON(p))
}

func (s *Server) createPost(c *gin.Context) {
	title := c.PostForm("title")
	content := c.PostForm("content")
	if title == "" || content == "" {
		respond(c, http.StatusBadRequest, "title and content are required", nil)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	p := &post{
		ID:        s.id("p"),
		UserID:    viewerID(c),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, file := range form.File["images"] {
		src, err := file.Open()
		if err != nil {
			continue
		}
		data, _ := io.ReadAll(src)
		src.Close()
		s.images[file.Filename] = data
		p.Images = append(p.Images, imageMeta{
			FileID:      s.id("f"),
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Size:        int64(len(data)),
		})
	}
	s.posts = append([]*post{p}, s.posts...)
	s.mu.Unlock()

	respond(c, http.StatusCreated, "Post created", postJSON(p))
}

func (s *Server) updatePost(c *gin.Context) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	p := s.findPost(c.Param("id"))
	if p != nil && p.UserID != viewerID(c) {
		s.mu.Unlock()
		respond(c, http.StatusForbidden, "Not your post", nil)
		return
	}
	if p != nil {
		if req.Title != "" {
			p.Title = req.Title
		}
		if req.Content != "" {
			p.Content = req.Content
		}
		p.UpdatedAt = time.Now()
	}
	s.mu.Unlock()

	if p == nil {
		respond(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	respond(c, http.StatusOK, "Post updated", postJSON(p))
}

func (s *Server) deletePost(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	p := s.findPost(id)
	if p != nil && p.UserID != viewerID(c) {
		s.mu.Unlock()
		respond(c, http.StatusForbidden, "Not your post", nil)
		return
	}
	if p != nil {
		kept := s.posts[:0]
		for _, q := range s.posts {
			if q.ID != id {
				kept = append(kept, q)
			}
		}
		s.posts = kept
		delete(s.likes, id)
	}
	s.mu.Unlock()

	if p == nil {
		respond(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	respond(c, http.StatusOK, "Post deleted", nil)
}

func (s *Server) toggleLike(c *gin.Context) {
	id := c.Param("id")
	viewer := viewerID(c)

	s.mu.Lock()
	p := s.findPost(id)
	if p == nil {
		s.mu.Unlock()
		respond(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	if s.likes[id] == nil {
		s.likes[id] = make(map[string]bool)
	}
	s.likes[id][viewer] = !s.likes[id][viewer]
	data := s.engagementLocked(id, viewer)
	s.mu.Unlock()

	respond(c, http.StatusOK, "", data)
}

func (s *Server) batchEngagement(c *gin.Context) {
	var req struct {
		PostIDs []string `json:"post_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	viewer := viewerID(c)

	s.mu.Lock()
	out := make([]gin.H, 0, len(req.PostIDs))
	for _, id := range req.PostIDs {
		out = append(out, s.engagementLocked(id, viewer))
	}
	s.mu.Unlock()

	respond(c, http.StatusOK, "", out)
}

// engagementLocked builds the aggregate for one post. Caller holds s.mu.
func (s *Server) engagementLocked(postID, viewer string) gin.H {
	var likeCount int
	for _, liked := range s.likes[postID] {
		if liked {
			likeCount++
		}
	}
	var commentCount int
	for _, cm := range s.comments {
		if cm.PostID == postID {
			commentCount++
		}
	}
	return gin.H{
		"post_id":       postID,
		"liked":         viewer != "" && s.likes[postID][viewer],
		"like_count":    likeCount,
		"comment_count": commentCount,
	}
}

func (s *Server) listComments(c *gin.Context) {
	postID := c.Param("id")
	s.mu.Lock()
	var out []gin.H
	for _, cm := range s.comments {
		if cm.PostID == postID {
			out = append(out, s.commentLocked(cm))
		}
	}
	s.mu.Unlock()
	respond(c, http.StatusOK, "", out)
}

func (s *Server) createComment(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	p := s.findPost(c.Param("id"))
	if p == nil {
		s.mu.Unlock()
		respond(c, http.StatusNotFound, "Post not found", nil)
		return
	}
	cm := &comment{
		ID:        s.id("c"),
		PostID:    p.ID,
		UserID:    viewerID(c),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	s.comments = append(s.comments, cm)
	data := s.commentLocked(cm)
	s.mu.Unlock()

	respond(c, http.StatusCreated, "Comment created", data)
}

func (s *Server) deleteComment(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	kept := s.comments[:0]
	found := false
	for _, cm := range s.comments {
		if cm.ID == id && cm.UserID == viewerID(c) {
			found = true
			continue
		}
		kept = append(kept, cm)
	}
	s.comments = kept
	s.mu.Unlock()

	if !found {
		respond(c, http.StatusNotFound, "Comment not found", nil)
		return
	}
	respond(c, http.StatusOK, "Comment deleted", nil)
}

func (s *Server) commentLocked(cm *comment) gin.H {
	var author gin.H
	if u, ok := s.users[cm.UserID]; ok {
		author = summaryJSON(u)
	}
	return gin.H{
		"_id":       cm.ID,
		"post_id":   cm.PostID,
		"content":   cm.Content,
		"author":    author,
		"createdAt": cm.CreatedAt,
		"updatedAt": cm.CreatedAt,
	}
}

func (s *Server) serveImage(c *gin.Context) {
	s.mu.Lock()
	data, ok := s.images[c.Param("filename")]
	s.mu.Unlock()
	if !ok {
		respond(c, http.StatusNotFound, "Image not found", nil)
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", data)
}

// findPost returns the post with id or nil. Caller holds s.mu.
func (s *Server) findPost(id string) *post {
	for _, p := range s.posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}
