package server

import (
	"strconv"

	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// listOffers writes one page of public offers with the total in X-Total-Count.
func (s *Server) listOffers(c *fiber.Ctx, q service.OfferQuery) error {
	p := parsePagination(c)
	q.Page, q.Limit = p.Page, p.Limit

	offers, total, err := s.offerService.ListPublic(c.UserContext(), q)
	if err != nil {
		return s.respondError(c, err)
	}
	c.Set("X-Total-Count", strconv.FormatInt(total, 10))
	return c.JSON(listOrEmpty(offers))
}

// ListJobOffers handles GET /api/job-offers
// @Summary Open job offers
// @Description Active offers whose deadline has not passed, newest first. The total is in X-Total-Count.
// @Tags job-offers
// @Produce json
// @Param type query string false "internship, pfe or job"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {array} models.JobOffer
// @Failure 400 {object} models.ErrorResponse
// @Router /job-offers [get]
func (s *Server) ListJobOffers(c *fiber.Ctx) error {
	q := service.OfferQuery{Type: c.Query("type")}
	if raw := c.Query("company_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return s.respondError(c, models.NewValidationError("Invalid company ID"))
		}
		q.CompanyID = uint(id)
	}
	return s.listOffers(c, q)
}

// ListJobOffersByType handles GET /api/job-offers/type/:type
// @Summary Open job offers of one type
// @Tags job-offers
// @Produce json
// @Param type path string true "internship, pfe or job"
// @Success 200 {array} models.JobOffer
// @Failure 400 {object} models.ErrorResponse
// @Router /job-offers/type/{type} [get]
func (s *Server) ListJobOffersByType(c *fiber.Ctx) error {
	return s.listOffers(c, service.OfferQuery{Type: c.Params("type")})
}

// ListJobOffersByCompany handles GET /api/job-offers/company/:companyId
// @Summary Open job offers of one company
// @Tags job-offers
// @Produce json
// @Param companyId path int true "Company profile ID"
// @Success 200 {array} models.JobOffer
// @Failure 400 {object} models.ErrorResponse
// @Router /job-offers/company/{companyId} [get]
func (s *Server) ListJobOffersByCompany(c *fiber.Ctx) error {
	companyID, err := s.parseID(c, "companyId")
	if err != nil {
		return nil
	}
	return s.listOffers(c, service.OfferQuery{CompanyID: companyID})
}

// GetJobOffer handles GET /api/job-offers/:id
// @Summary Open job offer
// @Description Inactive or expired offers are reported as not found
// @Tags job-offers
// @Produce json
// @Param id path int true "Job offer ID"
// @Success 200 {object} models.JobOffer
// @Failure 404 {object} models.ErrorResponse
// @Router /job-offers/{id} [get]
func (s *Server) GetJobOffer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	offer, err := s.offerService.GetPublic(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(offer)
}

// ListMyJobOffers handles GET /api/job-offers/mine
// @Summary Own job offers
// @Description Every offer of the caller's company, including closed ones
// @Tags job-offers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.JobOffer
// @Failure 403 {object} models.ErrorResponse
// @Router /job-offers/mine [get]
func (s *Server) ListMyJobOffers(c *fiber.Ctx) error {
	offers, err := s.offerService.ListMine(c.UserContext(), callerFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(listOrEmpty(offers))
}

// CreateJobOffer handles POST /api/job-offers
// @Summary Publish a job offer
// @Tags job-offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createOfferRequest true "Offer"
// @Success 201 {object} models.JobOffer
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /job-offers [post]
func (s *Server) CreateJobOffer(c *fiber.Ctx) error {
	var req createOfferRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}
	offer, err := s.offerService.Create(c.UserContext(), callerFrom(c), req.input())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(offer)
}

// UpdateJobOffer handles PUT /api/job-offers/:id
// @Summary Update an owned job offer
// @Tags job-offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job offer ID"
// @Param request body updateOfferRequest true "Offer fields"
// @Success 200 {object} models.JobOffer
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /job-offers/{id} [put]
func (s *Server) UpdateJobOffer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateOfferRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}
	offer, err := s.offerService.Update(c.UserContext(), callerFrom(c), id, req.patch())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(offer)
}

// DeleteJobOffer handles DELETE /api/job-offers/:id
// @Summary Delete an owned job offer
// @Description Its applications are deleted with it
// @Tags job-offers
// @Security BearerAuth
// @Param id path int true "Job offer ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /job-offers/{id} [delete]
func (s *Server) DeleteJobOffer(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.offerService.Delete(c.UserContext(), callerFrom(c), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
