package article

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/errkit/auth/authctx"
	"github.com/kbukum/errkit/auth/jwt"
	"github.com/kbukum/errkit/database/query"
	"github.com/kbukum/errkit/server"
)

// ReadCacheControl is sent on successful reads.
const ReadCacheControl = "public, max-age=30"

// Handler exposes articles over HTTP. Failures are handed to the error
// middleware with server.RespondWithError.
type Handler struct {
	svc *Service
}

// NewHandler creates a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts reads on public and writes on protected, which must run
// the auth middleware.
func (h *Handler) Register(public, protected gin.IRoutes) {
	public.GET("/articles", h.Index)
	public.GET("/articles/:slug", h.Show)
	protected.POST("/articles", h.Store)
	protected.PUT("/articles/:slug", h.Update)
	protected.DELETE("/articles/:slug", h.Destroy)
}

// Index lists articles with page/per_page pagination.
func (h *Handler) Index(c *gin.Context) {
	p := query.ParseFromRequest(c.Request, ListQuery)
	items, total, err := h.svc.List(c.Request.Context(), p)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Header("Cache-Control", ReadCacheControl)
	server.RespondOKWithMeta(c, items, server.NewMeta(p.Page, p.PerPage, total))
}

// Show returns one article.
func (h *Handler) Show(c *gin.Context) {
	a, err := h.svc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Header("Cache-Control", ReadCacheControl)
	c.Header("ETag", etag(a))
	server.RespondOK(c, a)
}

// Store creates an article owned by the caller.
func (h *Handler) Store(c *gin.Context) {
	claims, err := authctx.GetOrError[*jwt.UserClaims](c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	var in CreateInput
	if err := server.BindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}

	a, err := h.svc.Create(c.Request.Context(), claims.UserID(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Header("Location", c.FullPath()+"/"+a.Slug)
	server.RespondCreated(c, a)
}

// Update replaces an article owned by the caller, or any article for a
// moderator.
func (h *Handler) Update(c *gin.Context) {
	claims, err := authctx.GetOrError[*jwt.UserClaims](c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	var in UpdateInput
	if err := server.BindJSON(c, &in); err != nil {
		server.RespondWithError(c, err)
		return
	}

	a, err := h.svc.Update(c.Request.Context(), actorOf(claims), c.Param("slug"), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	c.Header("ETag", etag(a))
	server.RespondOK(c, a)
}

// Destroy deletes an article the caller may change.
func (h *Handler) Destroy(c *gin.Context) {
	claims, err := authctx.GetOrError[*jwt.UserClaims](c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actorOf(claims), c.Param("slug")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func actorOf(claims *jwt.UserClaims) Actor {
	return Actor{ID: claims.UserID(), Role: claims.Role}
}

func etag(a *Article) string {
	return fmt.Sprintf(`W/"%s-%s"`, strconv.FormatInt(a.ID, 10), strconv.Itoa(a.Version))
}
