package server

import "github.com/gofiber/fiber/v2"

// SetCompanyVerification handles PUT /api/admin/companies/:id/verification
// @Summary Verify or unverify a company
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Company profile ID"
// @Param request body verificationRequest true "Verification flag"
// @Success 200 {object} models.CompanyProfile
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/companies/{id}/verification [put]
func (s *Server) SetCompanyVerification(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req verificationRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}
	company, err := s.companyService.SetVerified(c.UserContext(), callerFrom(c), id, *req.Verified)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(company)
}

// GetFeatureFlags returns configured feature flags and their state for the caller.
// @Summary Feature flags
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{raw=map[string]string,evaluated=map[string]bool}
// @Router /admin/feature-flags [get]
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	var accountID uint
	if caller := callerFrom(c); caller != nil {
		accountID = caller.AccountID
	}

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(accountID),
	})
}
