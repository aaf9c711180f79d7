package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"aginventory/pkg/models"
)

func brotherJSON(brother models.Brother) gin.H {
	return gin.H{
		"id":             brother.ID,
		"email":          brother.Email,
		"username":       brother.Username,
		"firstName":      brother.FirstName,
		"lastName":       brother.LastName,
		"isAdmin":        brother.IsAdmin,
		"emailConfirmed": brother.EmailConfirmed,
	}
}

func listBrothers(c *gin.Context) {
	var brothers []models.Brother
	if err := db.Find(&brothers).Error; err != nil {
		renderError(c, err)
		return
	}
	out := make([]gin.H, len(brothers))
	for i, brother := range brothers {
		out[i] = brotherJSON(brother)
	}
	c.JSON(http.StatusOK, out)
}

const adminStatusSubject = "Admin status for Alpha Gamma Inventory"

func grantAdmin(c *gin.Context) {
	setAdmin(c, true, "<p>You have been made an admin on Alpha Gamma's Inventory website</p>")
}

func revokeAdmin(c *gin.Context) {
	setAdmin(c, false, "<p>You have been removed as an admin on Alpha Gamma's Inventory website</p>")
}

func setAdmin(c *gin.Context, isAdmin bool, html string) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var brother models.Brother
	if err := db.First(&brother, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "brother not found"})
		return
	}
	brother.IsAdmin = isAdmin
	if err := db.Save(&brother).Error; err != nil {
		renderError(c, err)
		return
	}
	if err := mail.Send(brother.Email, adminStatusSubject, html); err != nil {
		log.Errorf("admin status mail for %s failed: %v", brother.Email, err)
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Admin access updated for %s. They have been sent an email.", brother.FirstName),
	})
}

// removeBrother deletes the brother and, in the same transaction,
// every reservation they own. The cascade is explicit.
func removeBrother(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var brother models.Brother
	if err := db.First(&brother, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "brother not found"})
		return
	}
	removed, err := resSvc.RemoveBrother(id)
	if err != nil {
		renderError(c, err)
		return
	}
	log.Infof("removed brother %d and %d of their reservations", id, removed)
	c.JSON(http.StatusOK, gin.H{
		"message":             "Brother successfully deleted",
		"reservationsRemoved": removed,
	})
}
