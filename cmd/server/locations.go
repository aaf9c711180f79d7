package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aginventory/pkg/models"
)

func unitJSON(unit models.Unit) gin.H {
	return gin.H{
		"id":       unit.ID,
		"name":     unit.Name,
		"location": unit.Location,
	}
}

func shelfJSON(shelf models.Shelf) gin.H {
	return gin.H{
		"id":     shelf.ID,
		"name":   shelf.Name,
		"unitId": shelf.UnitID,
	}
}

func containerJSON(container models.Container) gin.H {
	return gin.H{
		"id":      container.ID,
		"name":    container.Name,
		"unitId":  container.UnitID,
		"shelfId": container.ShelfID,
	}
}

func listUnits(c *gin.Context) {
	units, err := invSvc.Units()
	if err != nil {
		renderError(c, err)
		return
	}
	out := make([]gin.H, len(units))
	for i, unit := range units {
		out[i] = unitJSON(unit)
	}
	c.JSON(http.StatusOK, out)
}

type unitRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}

func createUnit(c *gin.Context) {
	var request unitRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	unit, err := invSvc.CreateUnit(request.Name, request.Location)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, unitJSON(unit))
}

func editUnit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request unitRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	unit, err := invSvc.EditUnit(id, request.Name, request.Location)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, unitJSON(unit))
}

func deleteUnit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := invSvc.DeleteUnit(id); err != nil {
		renderError(c, err)
		return
	}
	c.Data(http.StatusNoContent, "application/json", nil)
}

func listShelves(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	shelves, err := invSvc.ShelvesByUnit(id)
	if err != nil {
		renderError(c, err)
		return
	}
	out := make([]gin.H, len(shelves))
	for i, shelf := range shelves {
		out[i] = shelfJSON(shelf)
	}
	c.JSON(http.StatusOK, out)
}

func createShelf(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	shelf, err := invSvc.CreateShelf(id, request.Name)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shelfJSON(shelf))
}

func editShelf(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	shelf, err := invSvc.EditShelf(id, request.Name)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, shelfJSON(shelf))
}

func deleteShelf(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := invSvc.DeleteShelf(id); err != nil {
		renderError(c, err)
		return
	}
	c.Data(http.StatusNoContent, "application/json", nil)
}

func listContainers(c *gin.Context) {
	containers, err := invSvc.Containers()
	if err != nil {
		renderError(c, err)
		return
	}
	out := make([]gin.H, len(containers))
	for i, container := range containers {
		out[i] = containerJSON(container)
	}
	c.JSON(http.StatusOK, out)
}

func listContainersByShelf(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	containers, err := invSvc.ContainersByShelf(id)
	if err != nil {
		renderError(c, err)
		return
	}
	out := make([]gin.H, len(containers))
	for i, container := range containers {
		out[i] = containerJSON(container)
	}
	c.JSON(http.StatusOK, out)
}

func createContainer(c *gin.Context) {
	var request struct {
		Name    string `json:"name" binding:"required"`
		ShelfID *uint  `json:"shelfId"`
		UnitID  *uint  `json:"unitId"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	container, err := invSvc.CreateContainer(request.Name, request.ShelfID, request.UnitID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, containerJSON(container))
}

func editContainer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	container, err := invSvc.EditContainer(id, request.Name)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, containerJSON(container))
}

func deleteContainer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := invSvc.DeleteContainer(id); err != nil {
		renderError(c, err)
		return
	}
	c.Data(http.StatusNoContent, "application/json", nil)
}

func assignUnitToContainer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		UnitID uint `json:"unitId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	container, err := invSvc.AssignUnitToContainer(id, request.UnitID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, containerJSON(container))
}

func assignShelfToContainer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		ShelfID uint `json:"shelfId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	container, err := invSvc.AssignShelfToContainer(id, request.ShelfID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, containerJSON(container))
}
