package handlers

import (
	"encoding/json"
	"net/http"
)

func (controller *Controller) GetGlobalSeries(w http.ResponseWriter, r *http.Request) {
	points, err := controller.repo.GetGlobalSeries()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}
