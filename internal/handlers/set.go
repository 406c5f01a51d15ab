package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/oakmart/oakmart-backend/internal/pkg/logger"
	"github.com/oakmart/oakmart-backend/internal/repos"
	"github.com/oakmart/oakmart-backend/internal/requestdata"
	"github.com/oakmart/oakmart-backend/internal/services"
	"github.com/oakmart/oakmart-backend/internal/types"
)

type SetHandler struct {
	log        *logger.Logger
	setService services.SetService
}

func NewSetHandler(log *logger.Logger, setService services.SetService) *SetHandler {
	return &SetHandler{
		log:        log.With("handler", "SetHandler"),
		setService: setService,
	}
}

type parentSummary struct {
	ID   uuid.UUID      `json:"id"`
	Slug string         `json:"slug"`
	Name datatypes.JSON `json:"name"`
}

type setResponse struct {
	*types.Set
	ParentSummary *parentSummary `json:"parent,omitempty"`
	ChildrenIDs   []uuid.UUID    `json:"children_ids"`
}

func newSetResponse(rel *services.SetWithRelations) setResponse {
	resp := setResponse{Set: rel.Set, ChildrenIDs: []uuid.UUID{}}
	if rel.Parent != nil {
		resp.ParentSummary = &parentSummary{
			ID:   rel.Parent.ID,
			Slug: rel.Parent.Slug,
			Name: rel.Parent.Name,
		}
	}
	for _, child := range rel.Children {
		resp.ChildrenIDs = append(resp.ChildrenIDs, child.ID)
	}
	return resp
}

// GET /api/catalog-sets
func (h *SetHandler) ListSets(c *gin.Context) {
	filter := repos.SetFilter{
		Name:       c.Query("name"),
		Slug:       c.Query("slug"),
		Search:     c.Query("search"),
		PublicOnly: c.Query("public") == "true",
		RootOnly:   c.Query("root") == "true",
	}
	// Unprivileged callers never see hidden sets regardless of the flag.
	if !requestdata.Privileged(c.Request.Context()) {
		filter.PublicOnly = true
	}

	sets, err := h.setService.List(c.Request.Context(), nil, filter)
	if err != nil {
		h.log.Error("ListSets failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"sets": sets})
}

// GET /api/catalog-sets/:id
func (h *SetHandler) GetSet(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	rel, err := h.setService.Get(c.Request.Context(), nil, setID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if !requestdata.Privileged(c.Request.Context()) && !rel.Set.Visible() {
		RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	RespondOK(c, newSetResponse(rel))
}

type createSetRequest struct {
	Name         json.RawMessage `json:"name"`
	Description  json.RawMessage `json:"description"`
	Slug         string          `json:"slug" binding:"required"`
	SlugOverride bool            `json:"slug_override"`
	Public       *bool           `json:"public"`
	HideOnIndex  bool            `json:"hide_on_index"`
	ParentID     *uuid.UUID      `json:"parent_id"`
	ChildrenIDs  []uuid.UUID     `json:"children_ids"`
	AttributeIDs []uuid.UUID     `json:"attribute_ids"`
	Seo          *seoRequest     `json:"seo"`
}

type seoRequest struct {
	Title       json.RawMessage `json:"title"`
	Description json.RawMessage `json:"description"`
}

// POST /api/catalog-sets
func (h *SetHandler) CreateSet(c *gin.Context) {
	var req createSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	in := services.CreateSetInput{
		Name:         datatypes.JSON(req.Name),
		Description:  datatypes.JSON(req.Description),
		Slug:         req.Slug,
		SlugOverride: req.SlugOverride,
		Public:       true,
		HideOnIndex:  req.HideOnIndex,
		ParentID:     req.ParentID,
		ChildrenIDs:  req.ChildrenIDs,
		AttributeIDs: req.AttributeIDs,
	}
	if req.Public != nil {
		in.Public = *req.Public
	}
	if req.Seo != nil {
		in.Seo = &services.SeoInput{
			Title:       datatypes.JSON(req.Seo.Title),
			Description: datatypes.JSON(req.Seo.Description),
		}
	}

	set, err := h.setService.Create(c.Request.Context(), nil, in)
	if err != nil {
		h.log.Warn("CreateSet failed", "error", err)
		RespondServiceError(c, err)
		return
	}

	rel, err := h.setService.Get(c.Request.Context(), nil, set.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSetResponse(rel))
}

// PATCH /api/catalog-sets/:id
//
// The body is decoded field by field so that an explicit null parent_id
// ("move to root") stays distinguishable from an omitted one.
func (h *SetHandler) UpdateSet(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	in := services.UpdateSetInput{}
	if v, ok := raw["name"]; ok {
		in.Name = datatypes.JSON(v)
	}
	if v, ok := raw["description"]; ok {
		in.Description = datatypes.JSON(v)
	}
	if v, ok := raw["slug"]; ok {
		var slug string
		if err := json.Unmarshal(v, &slug); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		in.Slug = &slug
	}
	if v, ok := raw["slug_override"]; ok {
		var override bool
		if err := json.Unmarshal(v, &override); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		in.SlugOverride = &override
	}
	if v, ok := raw["public"]; ok {
		var public bool
		if err := json.Unmarshal(v, &public); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		in.Public = &public
	}
	if v, ok := raw["hide_on_index"]; ok {
		var hide bool
		if err := json.Unmarshal(v, &hide); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		in.HideOnIndex = &hide
	}
	if v, ok := raw["parent_id"]; ok {
		in.ParentSupplied = true
		if string(v) != "null" {
			var pid uuid.UUID
			if err := json.Unmarshal(v, &pid); err != nil {
				RespondError(c, http.StatusBadRequest, "invalid_body", err)
				return
			}
			in.ParentID = &pid
		}
	}
	if v, ok := raw["children_ids"]; ok && string(v) != "null" {
		var ids []uuid.UUID
		if err := json.Unmarshal(v, &ids); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		in.ChildrenIDs = &ids
	}
	if v, ok := raw["attribute_ids"]; ok && string(v) != "null" {
		var ids []uuid.UUID
		if err := json.Unmarshal(v, &ids); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		in.AttributeIDs = &ids
	}
	if v, ok := raw["seo"]; ok && string(v) != "null" {
		var seo seoRequest
		if err := json.Unmarshal(v, &seo); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_body", err)
			return
		}
		in.Seo = &services.SeoInput{
			Title:       datatypes.JSON(seo.Title),
			Description: datatypes.JSON(seo.Description),
		}
	}

	set, err := h.setService.Update(c.Request.Context(), nil, setID, in)
	if err != nil {
		h.log.Warn("UpdateSet failed", "error", err, "set_id", setID)
		RespondServiceError(c, err)
		return
	}

	rel, err := h.setService.Get(c.Request.Context(), nil, set.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, newSetResponse(rel))
}

// DELETE /api/catalog-sets/:id
func (h *SetHandler) DeleteSet(c *gin.Context) {
	setID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := h.setService.Delete(c.Request.Context(), nil, setID); err != nil {
		h.log.Warn("DeleteSet failed", "error", err, "set_id", setID)
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderSetsRequest struct {
	SetIDs   []uuid.UUID `json:"set_ids" binding:"required"`
	ParentID *uuid.UUID  `json:"parent_id"`
}

// POST /api/catalog-sets/reorder
func (h *SetHandler) ReorderSets(c *gin.Context) {
	var req reorderSetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.setService.ReorderSiblings(c.Request.Context(), nil, req.SetIDs, req.ParentID); err != nil {
		h.log.Warn("ReorderSets failed", "error", err)
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
