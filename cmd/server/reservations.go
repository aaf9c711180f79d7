package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aginventory/pkg/models"
	"aginventory/pkg/reservation"
)

func reservationJSON(res models.Reservation) gin.H {
	return gin.H{
		"id":         res.ID,
		"reason":     res.Reason,
		"fromDate":   res.FromDate.Format(dateLayout),
		"toDate":     res.ToDate.Format(dateLayout),
		"reservedBy": res.ReservedBy,
		"itemName":   res.ItemName,
		"approved":   res.Approved,
		"brotherId":  res.BrotherID,
		"itemId":     res.ItemID,
	}
}

// listReservations returns all reservations, or the subset for one
// item (?itemId=) or one brother (?brotherId=). Order is store-native.
func listReservations(c *gin.Context) {
	var (
		reservations []models.Reservation
		err          error
	)
	switch {
	case c.Query("itemId") != "":
		itemID, convErr := strconv.ParseUint(c.Query("itemId"), 10, 64)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid itemId"})
			return
		}
		reservations, err = resSvc.ListByItem(uint(itemID))
	case c.Query("brotherId") != "":
		brotherID, convErr := strconv.ParseUint(c.Query("brotherId"), 10, 64)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid brotherId"})
			return
		}
		reservations, err = resSvc.ListByBrother(uint(brotherID))
	default:
		reservations, err = resSvc.List()
	}
	if err != nil {
		renderError(c, err)
		return
	}
	out := make([]gin.H, len(reservations))
	for i, res := range reservations {
		out[i] = reservationJSON(res)
	}
	c.JSON(http.StatusOK, out)
}

type reservationRequest struct {
	Reason   string `json:"reason" binding:"required"`
	FromDate string `json:"fromDate" binding:"required"`
	ToDate   string `json:"toDate" binding:"required"`
	ItemID   uint   `json:"itemId"`
}

func createReservation(c *gin.Context) {
	var request reservationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if request.ItemID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "itemId is required"})
		return
	}
	from, ok := parseDate(c, request.FromDate, "fromDate")
	if !ok {
		return
	}
	to, ok := parseDate(c, request.ToDate, "toDate")
	if !ok {
		return
	}

	item, err := invSvc.GetItem(request.ItemID)
	if err != nil {
		renderError(c, err)
		return
	}
	var brother models.Brother
	if err := db.First(&brother, currentBrother(c).BrotherID).Error; err != nil {
		renderError(c, err)
		return
	}

	res, err := resSvc.Create(request.Reason, from, to, item, brother)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reservationJSON(res))
}

// editReservation lets the owner edit with the self-service policy
// (approval resets) and admins edit anything with approval preserved.
func editReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var request reservationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	from, ok := parseDate(c, request.FromDate, "fromDate")
	if !ok {
		return
	}
	to, ok := parseDate(c, request.ToDate, "toDate")
	if !ok {
		return
	}

	res, err := resSvc.Get(id)
	if err != nil {
		renderError(c, err)
		return
	}
	claims := currentBrother(c)
	policy := reservation.EditSelfService
	if claims.IsAdmin {
		policy = reservation.EditAdmin
	} else if res.BrotherID != claims.BrotherID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you may only edit your own reservations"})
		return
	}

	res, err = resSvc.Edit(id, request.Reason, from, to, policy)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationJSON(res))
}

func deleteReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := resSvc.Get(id)
	if err != nil {
		renderError(c, err)
		return
	}
	claims := currentBrother(c)
	if !claims.IsAdmin && res.BrotherID != claims.BrotherID {
		c.JSON(http.StatusForbidden, gin.H{"error": "you may only delete your own reservations"})
		return
	}
	if err := resSvc.Delete(id); err != nil {
		renderError(c, err)
		return
	}
	c.Data(http.StatusNoContent, "application/json", nil)
}

func approveReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := resSvc.Approve(id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationJSON(res))
}

func revokeReservation(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := resSvc.Revoke(id)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservationJSON(res))
}
