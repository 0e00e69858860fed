package handlers

import (
	"html/template"
	"net/http"

	"chipanalyzer/internal/models"
)

func (controller *Controller) IndexHandler(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFiles("templates/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	runs, err := controller.repo.ListRuns()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		Runs []models.EstimateRun
	}{
		Runs: runs,
	}

	w.Header().Set("Content-Type", "text/html")
	tmpl.Execute(w, data)
}
