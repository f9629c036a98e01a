package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/services"
)

// BloodRequestHandler serves /api/blood-requests.
type BloodRequestHandler struct {
	requestService services.BloodRequestService
}

// NewBloodRequestHandler returns the handler.
func NewBloodRequestHandler(requestService services.BloodRequestService) *BloodRequestHandler {
	return &BloodRequestHandler{requestService: requestService}
}

// Create godoc
// POST /api/blood-requests
func (h *BloodRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateBloodRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	br, err := h.requestService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, br)
}

// List godoc
// GET /api/blood-requests
func (h *BloodRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requestService.List(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, requests)
}

// Get godoc
// GET /api/blood-requests/{id}
func (h *BloodRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	br, err := h.requestService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, br)
}

// Search godoc
// GET /api/blood-requests/search?city=&bloodGroup=
// Either parameter may be omitted, not both.
func (h *BloodRequestHandler) Search(w http.ResponseWriter, r *http.Request) {
	filter, _ := searchFilter(w, r)

	requests, err := h.requestService.Search(r.Context(), filter)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, requests)
}

var queryLabels = map[string]string{
	"name":       "Name",
	"city":       "City",
	"bloodGroup": "Blood group",
}

// searchFilter reads name, city and bloodGroup from the query string.
// A missing required parameter is answered with 400 and ok=false.
func searchFilter(w http.ResponseWriter, r *http.Request, required ...string) (models.SearchFilter, bool) {
	q := r.URL.Query()
	for _, key := range required {
		if strings.TrimSpace(q.Get(key)) == "" {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, queryLabels[key]+" is required")
			return models.SearchFilter{}, false
		}
	}

	return models.SearchFilter{
		Name:       q.Get("name"),
		City:       q.Get("city"),
		BloodGroup: q.Get("bloodGroup"),
	}, true
}
