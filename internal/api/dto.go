package api

import (
	"github.com/starford/coursebook/internal/courseservice"
	"github.com/starford/coursebook/internal/index"
	"github.com/starford/coursebook/internal/models"
)

// ToggleRequest is the request body for toggling a checklist item.
type ToggleRequest struct {
	Done *bool `json:"done" example:"true" validate:"required"`
}

// ModuleSummary is a lightweight item in a list response (aliased from the domain layer).
type ModuleSummary = courseservice.ModuleSummary

// ModuleListResponse wraps the ordered module listing.
type ModuleListResponse struct {
	Modules []ModuleSummary `json:"modules" validate:"required"`
	Total   int             `json:"total" example:"12" validate:"required"`
}

// ModuleDetail is a full module plus its neighbours in reading order.
type ModuleDetail struct {
	*models.Module
	Prev string `json:"prev,omitempty" example:"basics"`
	Next string `json:"next,omitempty" example:"generics"`
}

// SearchResult is a single search hit in the API response.
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}
