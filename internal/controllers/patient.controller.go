package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"patientms/internal/models"
	"patientms/internal/schema"
	"patientms/internal/services"
)

type PatientController struct {
	service *services.PatientService
}

func NewPatientController(service *services.PatientService) *PatientController {
	return &PatientController{service: service}
}

// Home godoc
// @Summary Service banner
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (pc *PatientController) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Patient Management System API",
	})
}

// About godoc
// @Summary Service description
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /about [get]
func (pc *PatientController) About(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "This is fully functional api to manage your patient records.",
	})
}

// ViewPatients godoc
// @Summary List all patients
// @Description Every record keyed by id, in store order, with derived bmi and verdict
// @Tags patients
// @Produce json
// @Success 200 {object} map[string]interface{} "Patients retrieved successfully"
// @Failure 500 {object} map[string]interface{} "Failed to load patients"
// @Router /view [get]
func (pc *PatientController) ViewPatients(c *gin.Context) {
	patients, err := pc.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Patients retrieved successfully",
		"data":    patientIndex(patients),
	})
}

// ViewPatient godoc
// @Summary Get a patient
// @Tags patients
// @Produce json
// @Param id path string true "Patient ID" example(P001)
// @Success 200 {object} map[string]interface{} "Patient retrieved successfully"
// @Failure 404 {object} map[string]interface{} "Patient not found"
// @Router /view/{id} [get]
func (pc *PatientController) ViewPatient(c *gin.Context) {
	patient, err := pc.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Patient retrieved successfully",
		"data":    patient.View(),
	})
}

// SortedPatients godoc
// @Summary List patients sorted by a numeric field
// @Description Stable sort, ties keep store order
// @Tags patients
// @Produce json
// @Param sortby query string true "height, weight or bmi"
// @Param order query string true "asc or desc"
// @Success 200 {object} map[string]interface{} "Patients sorted successfully"
// @Failure 400 {object} map[string]interface{} "Invalid sortby or order"
// @Router /patient/view [get]
func (pc *PatientController) SortedPatients(c *gin.Context) {
	patients, err := pc.service.SortedView(c.Request.Context(), c.Query("sortby"), c.Query("order"))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]models.PatientView, 0, len(patients))
	for _, p := range patients {
		views = append(views, p.View())
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Patients sorted successfully",
		"data":    views,
	})
}

// CreatePatient godoc
// @Summary Create a patient
// @Description bmi and verdict are derived and must not be sent
// @Tags patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param patient body models.PatientInput true "Patient data"
// @Success 201 {object} map[string]interface{} "Successfully Created patient"
// @Failure 400 {object} map[string]interface{} "Patient already existed"
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Router /create-patient [post]
func (pc *PatientController) CreatePatient(c *gin.Context) {
	var input models.PatientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, schema.FromDecodeError(err))
		return
	}

	patient, err := pc.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Successfully Created patient",
		"data":    patient.View(),
	})
}

// UpdatePatient godoc
// @Summary Update a patient
// @Description Merges the present fields over the stored record and revalidates it
// @Tags patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Param patient body models.PatientUpdate true "Fields to change"
// @Success 200 {object} map[string]interface{} "patient updated successfully"
// @Failure 404 {object} map[string]interface{} "Patient not found"
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Router /update-patient/{id} [put]
func (pc *PatientController) UpdatePatient(c *gin.Context) {
	var update models.PatientUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, schema.FromDecodeError(err))
		return
	}

	patient, err := pc.service.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "patient updated successfully",
		"data":    patient.View(),
	})
}

// UpdateCity godoc
// @Summary Update a patient's city
// @Tags patients
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param patient body models.CityUpdate true "Patient id and new city"
// @Success 200 {object} map[string]interface{} "patient updated successfully"
// @Failure 404 {object} map[string]interface{} "Patient not found"
// @Failure 422 {object} map[string]interface{} "Validation failed"
// @Router /update-patient/update-city [patch]
func (pc *PatientController) UpdateCity(c *gin.Context) {
	var update models.CityUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, schema.FromDecodeError(err))
		return
	}

	patient, err := pc.service.UpdateCity(c.Request.Context(), update)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "patient updated successfully",
		"data":    patient.View(),
	})
}

// DeletePatient godoc
// @Summary Delete a patient
// @Tags patients
// @Produce json
// @Security BearerAuth
// @Param id path string true "Patient ID"
// @Success 200 {object} map[string]interface{} "patient deleted successfully"
// @Failure 404 {object} map[string]interface{} "Patient not found"
// @Router /delete-patient/{id} [delete]
func (pc *PatientController) DeletePatient(c *gin.Context) {
	if err := pc.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "patient deleted successfully",
	})
}

// respondError maps service and schema errors onto the error envelope.
func respondError(c *gin.Context, err error) {
	var (
		verr      *schema.ValidationError
		notFound  *services.NotFoundError
		duplicate *services.DuplicateIDError
		badField  *services.InvalidFieldError
		badOrder  *services.InvalidDirectionError
	)

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status":  "error",
			"message": "Validation failed",
			"error":   verr.Error(),
			"errors":  verr.Fields,
		})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Patient not found",
			"error":   notFound.Error(),
		})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Patient already existed",
			"error":   duplicate.Error(),
		})
	case errors.As(err, &badField):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid sortby",
			"error":   badField.Error(),
		})
	case errors.As(err, &badOrder):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid order",
			"error":   badOrder.Error(),
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}

// patientIndex renders records as a JSON object keyed by id, keeping the
// slice order instead of the sorted key order of a Go map.
type patientIndex []models.Patient

func (idx patientIndex) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range idx {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.ID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.View())
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
