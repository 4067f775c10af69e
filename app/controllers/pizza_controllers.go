package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/app/services"
	"github.com/fornello/pizzeria/pkg/logger"
	"github.com/fornello/pizzeria/pkg/response"
	"github.com/fornello/pizzeria/pkg/validate"
)

// PizzaController exposes the catalogue. Reads are public, writes sit
// behind the admin gate.
type PizzaController struct {
	service *services.PizzaService
}

func NewPizzaController(service *services.PizzaService) *PizzaController {
	return &PizzaController{service: service}
}

type pizzaRequest struct {
	Name        string              `json:"name"        validate:"required,min=2,max=100"`
	BasePrice   float64             `json:"basePrice"   validate:"required,gt=0"`
	Description string              `json:"description" validate:"max=500"`
	Images      []string            `json:"images"`
	Ingredients []models.Ingredient `json:"ingredients"`
}

// List returns the full catalogue.
func (c *PizzaController) List(w http.ResponseWriter, r *http.Request) {
	pizzas, err := c.service.List(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("list pizzas", "error", err)
		response.ServerError(w, "Could not fetch pizzas")
		return
	}

	if pizzas == nil {
		pizzas = []models.Pizza{}
	}
	response.Success(w, "Pizzas fetched successfully.", pizzas)
}

// Get returns a single catalogue item.
func (c *PizzaController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid pizza ID")
		return
	}

	pizza, err := c.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "Pizza not found")
			return
		}
		logger.WithCtx(r.Context()).Error("get pizza", "error", err)
		response.ServerError(w, "Could not fetch pizza")
		return
	}

	response.Success(w, "Pizza fetched successfully.", pizza)
}

// Create adds a catalogue item. Admin only.
func (c *PizzaController) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := c.decode(w, r)
	if !ok {
		return
	}

	pizza := models.Pizza{
		Name:        req.Name,
		BasePrice:   req.BasePrice,
		Description: req.Description,
		Images:      req.Images,
		Ingredients: req.Ingredients,
	}
	if err := c.service.Create(r.Context(), &pizza); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			response.BadRequest(w, "Pizza already exists.")
			return
		}
		logger.WithCtx(r.Context()).Error("create pizza", "error", err)
		response.ServerError(w, "Could not create pizza")
		return
	}

	response.Success(w, "Pizza created successfully.", pizza)
}

// Update modifies a catalogue item. Admin only.
func (c *PizzaController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid pizza ID")
		return
	}

	req, ok := c.decode(w, r)
	if !ok {
		return
	}

	pizza := models.Pizza{
		ID:          id,
		Name:        req.Name,
		BasePrice:   req.BasePrice,
		Description: req.Description,
		Images:      req.Images,
		Ingredients: req.Ingredients,
	}
	if err := c.service.Update(r.Context(), id, &pizza); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			response.NotFound(w, "Pizza not found")
		case errors.Is(err, repositories.ErrDuplicate):
			response.BadRequest(w, "Pizza already exists.")
		default:
			logger.WithCtx(r.Context()).Error("update pizza", "error", err)
			response.ServerError(w, "Could not update pizza")
		}
		return
	}

	response.Success(w, "Pizza updated successfully.", pizza)
}

// Delete removes a catalogue item. Admin only.
func (c *PizzaController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid pizza ID")
		return
	}

	if err := c.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			response.NotFound(w, "Pizza not found")
			return
		}
		logger.WithCtx(r.Context()).Error("delete pizza", "error", err)
		response.ServerError(w, "Could not delete pizza")
		return
	}

	response.Success(w, "Pizza deleted successfully.", nil)
}

func (c *PizzaController) decode(w http.ResponseWriter, r *http.Request) (pizzaRequest, bool) {
	var req pizzaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return req, false
	}
	if errs := validate.Struct(&req); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return req, false
	}
	return req, true
}
