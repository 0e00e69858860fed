package handlers

import "chipanalyzer/internal/database"

type Controller struct {
	repo *database.Repository
}

func NewController(repo *database.Repository) *Controller {
	return &Controller{
		repo: repo,
	}
}
