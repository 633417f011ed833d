package server

import (
	"jobboard/internal/models"
	"jobboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Apply handles POST /api/applications
// @Summary Apply to a job offer
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body applyRequest true "Application"
// @Success 201 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /applications [post]
func (s *Server) Apply(c *fiber.Ctx) error {
	var req applyRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}
	app, err := s.applicationService.Apply(c.UserContext(), callerFrom(c), service.ApplyInput{
		JobOfferID:  req.JobOfferID,
		CoverLetter: req.CoverLetter,
		CVURL:       req.CVURL,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(app)
}

// ListMyApplications handles GET /api/applications/my-applications
// @Summary Own applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Application
// @Router /applications/my-applications [get]
func (s *Server) ListMyApplications(c *fiber.Ctx) error {
	apps, err := s.applicationService.ListMine(c.UserContext(), callerFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(listOrEmpty(apps))
}

// ListCompanyApplications handles GET /api/applications/company
// @Summary Applications to the caller's offers
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Application
// @Router /applications/company [get]
func (s *Server) ListCompanyApplications(c *fiber.Ctx) error {
	apps, err := s.applicationService.ListForCompany(c.UserContext(), callerFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(listOrEmpty(apps))
}

// ListOfferApplications handles GET /api/applications/offer/:offerId
// @Summary Applications to one owned offer
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param offerId path int true "Job offer ID"
// @Success 200 {array} models.Application
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/offer/{offerId} [get]
func (s *Server) ListOfferApplications(c *fiber.Ctx) error {
	offerID, err := s.parseID(c, "offerId")
	if err != nil {
		return nil
	}
	apps, err := s.applicationService.ListForOffer(c.UserContext(), callerFrom(c), offerID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(listOrEmpty(apps))
}

// GetApplication handles GET /api/applications/:id
// @Summary One application
// @Description Visible to its student and to the company owning the offer
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} models.Application
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/{id} [get]
func (s *Server) GetApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	app, err := s.applicationService.Get(c.UserContext(), callerFrom(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(app)
}

// UpdateApplicationStatus handles PUT /api/applications/:id/status
// @Summary Change an application's status
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body updateStatusRequest true "New status"
// @Success 200 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/{id}/status [put]
func (s *Server) UpdateApplicationStatus(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req updateStatusRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}
	app, err := s.applicationService.UpdateStatus(c.UserContext(), callerFrom(c), id, models.ApplicationStatus(req.Status))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(app)
}

// WithdrawApplication handles PUT /api/applications/:id/withdraw
// @Summary Withdraw an own application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} models.Application
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /applications/{id}/withdraw [put]
func (s *Server) WithdrawApplication(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	app, err := s.applicationService.Withdraw(c.UserContext(), callerFrom(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(app)
}
