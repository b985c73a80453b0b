package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
	"resumebuilder/internal/repositories"
)

// Resource is the generic CRUD contract, instantiated once per resource
// type. It is owner-agnostic: routes that need ownership or active-only
// narrowing inject it through Scope and the store applies it to every query.
type Resource[T any] struct {
	store repositories.Store[T]

	// Scope, when set, narrows every operation (ownership, active flag).
	Scope func(c *gin.Context) repositories.Scope
	// OnCreate, when set, amends the bound document before it is persisted
	// (e.g. stamping the owner).
	OnCreate func(c *gin.Context, doc *T) error
}

func NewResource[T any](store repositories.Store[T]) *Resource[T] {
	return &Resource[T]{store: store}
}

func (h *Resource[T]) scope(c *gin.Context) repositories.Scope {
	if h.Scope == nil {
		return nil
	}
	return h.Scope(c)
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperrors.NotFound("Invalid ID: no document found with that ID")
	}
	return id, nil
}

func (h *Resource[T]) CreateOne(c *gin.Context) {
	doc := new(T)
	if err := c.ShouldBindJSON(doc); err != nil {
		respondBindError(c, err)
		return
	}
	if h.OnCreate != nil {
		if err := h.OnCreate(c, doc); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := h.store.Create(c.Request.Context(), doc); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, gin.H{"data": doc})
}

func (h *Resource[T]) GetOne(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	doc, err := h.store.GetByID(c.Request.Context(), id, h.scope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"data": doc})
}

func (h *Resource[T]) UpdateOne(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	patch := map[string]any{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBindError(c, err)
		return
	}
	doc, err := h.store.Update(c.Request.Context(), id, patch, h.scope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{"data": doc})
}

func (h *Resource[T]) DeleteOne(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Delete(c.Request.Context(), id, h.scope(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusNoContent, nil)
}

// GetAll composes the list pipeline in a fixed order: filter, sort,
// paginate in the store; field projection at serialization.
func (h *Resource[T]) GetAll(c *gin.Context) {
	q := repositories.ParseListQuery(c.Request.URL.Query())
	docs, err := h.store.List(c.Request.Context(), q, h.scope(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, projectList(docs, q.Fields), len(docs))
}
