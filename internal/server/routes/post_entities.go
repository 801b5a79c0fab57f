package routes

import (
	"errors"
	"net/http"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"

	"github.com/caseboard/backend/internal/metric"
	"github.com/caseboard/backend/internal/server/middleware"
	"github.com/caseboard/backend/pkg/common"
	"github.com/caseboard/backend/pkg/logger"
	"github.com/caseboard/backend/pkg/store"
)

type entityBody struct {
	Name        string   `json:"name" validate:"required"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Importance  int      `json:"importance"`
	Aliases     []string `json:"aliases"`
	Sources     []string `json:"sources"`
}

func (b *entityBody) toEntity() common.Entity {
	return common.Entity{
		Name:        b.Name,
		Type:        common.EntityType(b.Type),
		Description: b.Description,
		Importance:  b.Importance,
		Aliases:     b.Aliases,
		Sources:     b.Sources,
	}
}

// CreateEntityHandler adds an entity exactly as supplied, without
// matching it against existing entities. This is the manual path an
// investigator uses when two same-named entities really are distinct.
func CreateEntityHandler(c echo.Context) error {
	type createEntityResponse struct {
		Message string `json:"message"`
		ID      string `json:"id,omitempty"`
	}

	data := new(entityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Invalid request body",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	id, err := st.AddEntity(c.Request().Context(), data.toEntity())
	if errors.Is(err, store.ErrEmptyName) {
		return c.JSON(http.StatusBadRequest, createEntityResponse{
			Message: "Entity name must not be empty",
		})
	}
	if err != nil {
		logger.Error("Failed to add entity", "err", err)
		return c.JSON(http.StatusInternalServerError, createEntityResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("add_entity").Inc()
	return c.JSON(http.StatusOK, createEntityResponse{
		Message: "Entity created successfully",
		ID:      id,
	})
}

// MergeEntityHandler adds an entity through the matcher: if a heuristic
// match exists the entity is merged into it and the canonical ID is
// returned, otherwise a new entity is created.
func MergeEntityHandler(c echo.Context) error {
	type mergeEntityResponse struct {
		Message string `json:"message"`
		ID      string `json:"id,omitempty"`
	}

	data := new(entityBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, mergeEntityResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, mergeEntityResponse{
			Message: "Invalid request body",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	id, err := st.AddOrMergeEntity(c.Request().Context(), data.toEntity())
	if errors.Is(err, store.ErrEmptyName) {
		return c.JSON(http.StatusBadRequest, mergeEntityResponse{
			Message: "Entity name must not be empty",
		})
	}
	if err != nil {
		logger.Error("Failed to merge entity", "err", err)
		return c.JSON(http.StatusInternalServerError, mergeEntityResponse{
			Message: "Internal server error",
		})
	}

	metric.GraphMutations.WithLabelValues("merge_entity").Inc()
	return c.JSON(http.StatusOK, mergeEntityResponse{
		Message: "Entity integrated successfully",
		ID:      id,
	})
}
