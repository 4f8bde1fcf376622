package http

import (
	"github.com/gin-gonic/gin"

	"github.com/example/blog-records/internal/service"
	"github.com/example/blog-records/internal/transport/http/handlers"
)

type Router = *gin.Engine

func NewRouter(authors *service.AuthorService, posts *service.PostService) Router {
	if mode := gin.Mode(); mode == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	ah := handlers.NewAuthorHandler(authors)
	r.POST("/authors", ah.CreateAuthor)
	r.GET("/authors", ah.ListAuthors)
	r.GET("/authors/:id", ah.GetAuthor)
	r.PATCH("/authors/:id", ah.UpdateAuthor)
	r.DELETE("/authors/:id", ah.DeleteAuthor)

	ph := handlers.NewPostHandler(posts)
	r.POST("/posts", ph.CreatePost)
	r.GET("/posts", ph.ListPosts)
	r.GET("/posts/search", ph.Search)
	r.GET("/posts/stats", ph.Stats)
	r.GET("/posts/:id", ph.GetPost)
	r.PATCH("/posts/:id", ph.UpdatePost)
	r.DELETE("/posts/:id", ph.DeletePost)

	return r
}
