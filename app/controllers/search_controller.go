package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/docuchat/backend-go/internal/services"
)

// SearchController 语义检索接口
type SearchController struct {
	BaseController
	searchService *services.SearchService
}

// NewSearchController 创建检索控制器
func NewSearchController(searchService *services.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

type searchRequest struct {
	Query string `json:"query" validate:"required"`
}

// Search 在当前用户的知识库中检索
// POST /api/search
func (c *SearchController) Search() {
	userID, ok := c.currentUserID()
	if !ok {
		c.JSONError(http.StatusUnauthorized, "unauthorized")
		return
	}

	var req searchRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, "query is required")
		return
	}

	results, err := c.searchService.Search(c.Ctx.Request.Context(), userID, req.Query)
	if err != nil {
		c.JSONAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"results": results,
	})
}
