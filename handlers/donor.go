package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adarshgogate/BloodDonorApp/models"
	"github.com/adarshgogate/BloodDonorApp/pkg"
	"github.com/adarshgogate/BloodDonorApp/services"
)

// DonorHandler serves /api/donors.
type DonorHandler struct {
	donorService services.DonorService
}

// NewDonorHandler returns the handler.
func NewDonorHandler(donorService services.DonorService) *DonorHandler {
	return &DonorHandler{donorService: donorService}
}

// Create godoc
// POST /api/donors
func (h *DonorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateDonorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	donor, err := h.donorService.Create(r.Context(), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, donor)
}

// List godoc
// GET /api/donors
func (h *DonorHandler) List(w http.ResponseWriter, r *http.Request) {
	donors, err := h.donorService.List(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, donors)
}

// Get godoc
// GET /api/donors/{id}
func (h *DonorHandler) Get(w http.ResponseWriter, r *http.Request) {
	donor, err := h.donorService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, donor)
}

// Update godoc
// PUT /api/donors/{id}
func (h *DonorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateDonorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkg.ErrorWithMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	donor, err := h.donorService.Update(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, donor)
}

// Delete godoc
// DELETE /api/donors/{id} (admin only)
func (h *DonorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.donorService.Delete(r.Context(), r.PathValue("id")); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "donor deleted"})
}

// SearchByCity godoc
// GET /api/donors/search/city?city=
func (h *DonorHandler) SearchByCity(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "city")
}

// SearchByBloodGroup godoc
// GET /api/donors/search/bloodgroup?bloodGroup=
func (h *DonorHandler) SearchByBloodGroup(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "bloodGroup")
}

// SearchByName godoc
// GET /api/donors/search/name?name=
func (h *DonorHandler) SearchByName(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "name")
}

// Search godoc
// GET /api/donors/search?city=&bloodGroup=
func (h *DonorHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "city", "bloodGroup")
}

// search requires every named query parameter and filters on them.
func (h *DonorHandler) search(w http.ResponseWriter, r *http.Request, required ...string) {
	filter, ok := searchFilter(w, r, required...)
	if !ok {
		return
	}

	donors, err := h.donorService.Search(r.Context(), filter)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, donors)
}
