package ownertype

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"field-console-api/internal/fields"
)

type OwnerTypeController struct {
	Service OwnerTypeServiceAPI
}

func (oc *OwnerTypeController) GetAllOwnerTypes(c *gin.Context) {
	types, err := oc.Service.GetAllOwnerTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Owner types fetched successfully",
		"owner_types": types,
	})
}

func (oc *OwnerTypeController) CreateOwnerType(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ot, err := oc.Service.CreateOwnerType(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, fields.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Owner type created successfully",
		"owner_type": ot,
	})
}
