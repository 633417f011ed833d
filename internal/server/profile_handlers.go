package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetStudentProfile handles GET /api/students/profile
// @Summary Own student profile
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.StudentProfile
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /students/profile [get]
func (s *Server) GetStudentProfile(c *fiber.Ctx) error {
	profile, err := s.studentService.GetProfile(c.UserContext(), callerFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateStudentProfile handles PUT /api/students/profile
// @Summary Update own student profile
// @Description Partial update. A present skills, experiences or education list replaces the stored set.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateStudentRequest true "Profile fields"
// @Success 200 {object} models.StudentProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /students/profile [put]
func (s *Server) UpdateStudentProfile(c *fiber.Ctx) error {
	var req updateStudentRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}
	profile, err := s.studentService.UpdateProfile(c.UserContext(), callerFrom(c), req.patch())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// GetStudent handles GET /api/students/:id
// @Summary Public student profile
// @Tags students
// @Produce json
// @Param id path int true "Student profile ID"
// @Success 200 {object} models.StudentProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /students/{id} [get]
func (s *Server) GetStudent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	profile, err := s.studentService.GetByID(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// ListCompanies handles GET /api/companies
// @Summary Verified companies
// @Tags companies
// @Produce json
// @Success 200 {array} models.CompanyProfile
// @Router /companies [get]
func (s *Server) ListCompanies(c *fiber.Ctx) error {
	companies, err := s.companyService.ListVerified(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(listOrEmpty(companies))
}

// GetCompany handles GET /api/companies/:id
// @Summary Public company profile
// @Description Unverified companies are reported as not found
// @Tags companies
// @Produce json
// @Param id path int true "Company profile ID"
// @Success 200 {object} models.CompanyProfile
// @Failure 404 {object} models.ErrorResponse
// @Router /companies/{id} [get]
func (s *Server) GetCompany(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	company, err := s.companyService.GetPublic(c.UserContext(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(company)
}

// GetCompanyProfile handles GET /api/companies/profile
// @Summary Own company profile
// @Tags companies
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CompanyProfile
// @Failure 403 {object} models.ErrorResponse
// @Router /companies/profile [get]
func (s *Server) GetCompanyProfile(c *fiber.Ctx) error {
	company, err := s.companyService.GetProfile(c.UserContext(), callerFrom(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(company)
}

// UpdateCompanyProfile handles PUT /api/companies/profile
// @Summary Update own company profile
// @Tags companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateCompanyRequest true "Profile fields"
// @Success 200 {object} models.CompanyProfile
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /companies/profile [put]
func (s *Server) UpdateCompanyProfile(c *fiber.Ctx) error {
	var req updateCompanyRequest
	if err := s.decodeBody(c, &req); err != nil {
		return nil
	}
	company, err := s.companyService.UpdateProfile(c.UserContext(), callerFrom(c), req.patch())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(company)
}
