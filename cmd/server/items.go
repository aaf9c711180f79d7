package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aginventory/pkg/models"
)

func itemJSON(item models.Item) gin.H {
	return gin.H{
		"id":          item.ID,
		"name":        item.Name,
		"description": item.Description,
		"quantity":    item.Quantity,
		"unitId":      item.UnitID,
		"shelfId":     item.ShelfID,
		"containerId": item.ContainerID,
	}
}

func itemsJSON(items []models.Item) []gin.H {
	out := make([]gin.H, len(items))
	for i, item := range items {
		out[i] = itemJSON(item)
	}
	return out
}

func listItems(c *gin.Context) {
	items, err := invSvc.Items()
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsJSON(items))
}

func listItemsByUnit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	items, err := invSvc.ItemsByUnit(id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsJSON(items))
}

func listItemsByShelf(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	items, err := invSvc.ItemsByShelf(id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsJSON(items))
}

func listItemsByContainer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	items, err := invSvc.ItemsByContainer(id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemsJSON(items))
}

// Quantity is a pointer so the binding layer accepts an explicit zero:
// an item may legitimately be out of stock.
type itemRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Quantity    *int   `json:"quantity" binding:"required"`
	UnitID      *uint  `json:"unitId"`
}

func createItem(c *gin.Context) {
	var request itemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	item, err := invSvc.CreateItem(request.Name, request.Description, request.UnitID, *request.Quantity)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, itemJSON(item))
}

func editItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request itemRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	item, err := invSvc.EditItem(id, request.Name, request.Description, request.UnitID, *request.Quantity)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemJSON(item))
}

func deleteItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := invSvc.DeleteItem(id); err != nil {
		renderError(c, err)
		return
	}
	c.Data(http.StatusNoContent, "application/json", nil)
}

func assignUnitToItem(c *gin.Context) {
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
	item, err := invSvc.AssignUnit(id, request.UnitID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemJSON(item))
}

func assignShelfToItem(c *gin.Context) {
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
	item, err := invSvc.AssignShelf(id, request.ShelfID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemJSON(item))
}

func assignContainerToItem(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request struct {
		ContainerID uint `json:"containerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	item, err := invSvc.AssignContainer(id, request.ContainerID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemJSON(item))
}

func removeItemFromContainer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	item, err := invSvc.RemoveFromContainer(id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemJSON(item))
}

func repairHierarchy(c *gin.Context) {
	repaired, err := invSvc.Repair()
	if err != nil {
		renderError(c, err)
		return
	}
	log.Infof("hierarchy repair pass fixed %d items", repaired)
	c.JSON(http.StatusOK, gin.H{"repaired": repaired})
}
