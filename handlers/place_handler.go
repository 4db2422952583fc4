package handlers

import (
	"github.com/fenilmodi00/flightme-backend/services"
	"github.com/gofiber/fiber/v2"
)

type PlaceHandler struct {
	Hotels      *services.HotelService
	Attractions *services.AttractionService
}

func NewPlaceHandler(hotels *services.HotelService, attractions *services.AttractionService) *PlaceHandler {
	return &PlaceHandler{Hotels: hotels, Attractions: attractions}
}

func (h *PlaceHandler) GetHotels(c *fiber.Ctx) error {
	hotels, err := h.Hotels.SearchHotels(c.UserContext(), c.Query("location"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    hotels,
	})
}

func (h *PlaceHandler) GetAttractions(c *fiber.Ctx) error {
	attractions, err := h.Attractions.GetAttractions(c.UserContext(), c.Query("city"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    attractions,
	})
}
