package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"aginventory/pkg/config"
	"aginventory/pkg/inventory"
	"aginventory/pkg/logger"
	"aginventory/pkg/models"
	"aginventory/pkg/reservation"
	"aginventory/pkg/token"
)

type sentMail struct {
	To      string
	Subject string
	HTML    string
}

type fakeNotifier struct {
	sent []sentMail
}

func (f *fakeNotifier) Send(to, subject, html string) error {
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, HTML: html})
	return nil
}

func setupTest(t *testing.T) *fakeNotifier {
	gin.SetMode(gin.TestMode)
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := testDB.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	notifier := &fakeNotifier{}
	db = testDB
	cfg = &config.Config{Env: "development"}
	log = logger.New("error")
	tokens = token.NewManager("test-secret", "test-salt")
	mail = notifier
	invSvc = inventory.NewService(testDB)
	resSvc = reservation.NewService(testDB, notifier)
	return notifier
}

func jsonContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var buf *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		buf = bytes.NewBuffer(raw)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	c.Request = httptest.NewRequest(method, target, buf)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func seedBrother(t *testing.T, email, username string, isAdmin bool) models.Brother {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Abc123$x"), bcrypt.MinCost)
	brother := models.Brother{
		Email:          email,
		Username:       username,
		FirstName:      "John",
		LastName:       "Doe",
		PasswordHash:   string(hash),
		IsAdmin:        isAdmin,
		EmailConfirmed: true,
	}
	if err := db.Create(&brother).Error; err != nil {
		t.Fatalf("failed to seed brother: %v", err)
	}
	return brother
}

func actAs(c *gin.Context, brother models.Brother) {
	c.Set(currentBrotherKey, token.SessionClaims{
		BrotherID: brother.ID,
		Email:     brother.Email,
		Name:      brother.FullName(),
		IsAdmin:   brother.IsAdmin,
	})
}

func TestRegisterWeakPassword(t *testing.T) {
	setupTest(t)

	c, w := jsonContext(t, "POST", "/api/v1/register", map[string]interface{}{
		"email":           "john@example.com",
		"username":        "johndoe",
		"firstName":       "John",
		"lastName":        "Doe",
		"password":        "abc12345",
		"confirmPassword": "abc12345",
	})
	register(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var count int64
	db.Model(&models.Brother{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRegisterConfirmLogin(t *testing.T) {
	notifier := setupTest(t)

	c, w := jsonContext(t, "POST", "/api/v1/register", map[string]interface{}{
		"email":           "john@example.com",
		"username":        "johndoe",
		"firstName":       "John",
		"lastName":        "Doe",
		"password":        "Abc123$x",
		"confirmPassword": "Abc123$x",
	})
	register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, len(notifier.sent))
	assert.Equal(t, "john@example.com", notifier.sent[0].To)
	assert.Equal(t, "Please Confirm Your Email", notifier.sent[0].Subject)

	// login is blocked until the email is confirmed
	c, w = jsonContext(t, "POST", "/api/v1/login", map[string]interface{}{
		"email":    "john@example.com",
		"password": "Abc123$x",
	})
	login(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	raw, err := tokens.EmailToken("john@example.com", token.PurposeConfirm, token.ConfirmTTL)
	assert.NoError(t, err)
	c, w = jsonContext(t, "GET", "/api/v1/confirm_email/"+raw, nil)
	c.Params = gin.Params{gin.Param{Key: "token", Value: raw}}
	confirmEmail(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = jsonContext(t, "POST", "/api/v1/login", map[string]interface{}{
		"email":    "john@example.com",
		"password": "Abc123$x",
	})
	login(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response["token"])

	claims, err := tokens.ParseSession(response["token"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "john@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	setupTest(t)
	seedBrother(t, "jane@example.com", "johndoe", false)

	c, w := jsonContext(t, "POST", "/api/v1/register", map[string]interface{}{
		"email":           "john@example.com",
		"username":        "johndoe",
		"firstName":       "John",
		"lastName":        "Doe",
		"password":        "Abc123$x",
		"confirmPassword": "Abc123$x",
	})
	register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	setupTest(t)
	seedBrother(t, "john@example.com", "johndoe", false)

	c, w := jsonContext(t, "POST", "/api/v1/login", map[string]interface{}{
		"email":    "john@example.com",
		"password": "Wrong123$",
	})
	login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestResetPassword(t *testing.T) {
	setupTest(t)
	brother := seedBrother(t, "john@example.com", "johndoe", false)

	raw, err := tokens.EmailToken(brother.Email, token.PurposeReset, token.ResetTTL)
	assert.NoError(t, err)

	c, w := jsonContext(t, "POST", "/api/v1/reset_password/"+raw, map[string]interface{}{
		"newPassword":        "New456!z",
		"confirmNewPassword": "New456!z",
	})
	c.Params = gin.Params{gin.Param{Key: "token", Value: raw}}
	resetPassword(c)
	assert.Equal(t, http.StatusOK, w.Code)

	var stored models.Brother
	db.First(&stored, brother.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("New456!z")))
}

func TestRequireAdmin(t *testing.T) {
	setupTest(t)
	member := seedBrother(t, "john@example.com", "johndoe", false)

	c, w := jsonContext(t, "POST", "/api/v1/items", nil)
	actAs(c, member)
	requireAdmin(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.True(t, c.IsAborted())
}

func TestCreateReservationHandler(t *testing.T) {
	setupTest(t)
	member := seedBrother(t, "john@example.com", "johndoe", false)
	item, err := invSvc.CreateItem("Drill", "power drill", nil, 1)
	assert.NoError(t, err)

	c, w := jsonContext(t, "POST", "/api/v1/reservations", map[string]interface{}{
		"reason":   "camping trip",
		"fromDate": time.Now().AddDate(0, 0, 1).Format(dateLayout),
		"toDate":   time.Now().AddDate(0, 0, 7).Format(dateLayout),
		"itemId":   item.ID,
	})
	actAs(c, member)
	createReservation(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "Drill", response["itemName"])
	assert.Equal(t, "John Doe", response["reservedBy"])
	assert.Equal(t, false, response["approved"])
}

func TestCreateReservationRejectsPastDates(t *testing.T) {
	setupTest(t)
	member := seedBrother(t, "john@example.com", "johndoe", false)
	item, _ := invSvc.CreateItem("Drill", "power drill", nil, 1)

	c, w := jsonContext(t, "POST", "/api/v1/reservations", map[string]interface{}{
		"reason":   "camping trip",
		"fromDate": time.Now().AddDate(0, 0, -3).Format(dateLayout),
		"toDate":   time.Now().AddDate(0, 0, 7).Format(dateLayout),
		"itemId":   item.ID,
	})
	actAs(c, member)
	createReservation(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEditReservationForbiddenForOtherMember(t *testing.T) {
	setupTest(t)
	owner := seedBrother(t, "john@example.com", "johndoe", false)
	intruder := seedBrother(t, "jane@example.com", "janedoe", false)
	item, _ := invSvc.CreateItem("Drill", "power drill", nil, 1)

	var ownerRecord models.Brother
	db.First(&ownerRecord, owner.ID)
	res, err := resSvc.Create("camping trip", time.Now(), time.Now().AddDate(0, 0, 7), item, ownerRecord)
	assert.NoError(t, err)

	c, w := jsonContext(t, "PUT", "/api/v1/reservations/1", map[string]interface{}{
		"reason":   "hijacked",
		"fromDate": time.Now().Format(dateLayout),
		"toDate":   time.Now().AddDate(0, 0, 7).Format(dateLayout),
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	actAs(c, intruder)
	editReservation(c)

	assert.Equal(t, http.StatusForbidden, w.Code)

	stored, _ := resSvc.Get(res.ID)
	assert.Equal(t, "camping trip", stored.Reason)
}

func TestAdminEditPreservesApproval(t *testing.T) {
	setupTest(t)
	owner := seedBrother(t, "john@example.com", "johndoe", false)
	admin := seedBrother(t, "boss@example.com", "bossman", true)
	item, _ := invSvc.CreateItem("Drill", "power drill", nil, 1)

	res, err := resSvc.Create("camping trip", time.Now(), time.Now().AddDate(0, 0, 7), item, owner)
	assert.NoError(t, err)
	res, err = resSvc.Approve(res.ID)
	assert.NoError(t, err)

	c, w := jsonContext(t, "PUT", "/api/v1/reservations/1", map[string]interface{}{
		"reason":   "adjusted by admin",
		"fromDate": time.Now().Format(dateLayout),
		"toDate":   time.Now().AddDate(0, 0, 9).Format(dateLayout),
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	actAs(c, admin)
	editReservation(c)

	assert.Equal(t, http.StatusOK, w.Code)
	stored, _ := resSvc.Get(res.ID)
	assert.True(t, stored.Approved)
	assert.Equal(t, "adjusted by admin", stored.Reason)
}

func TestRemoveBrotherCascades(t *testing.T) {
	setupTest(t)
	admin := seedBrother(t, "boss@example.com", "bossman", true)
	victim := seedBrother(t, "john@example.com", "johndoe", false)
	bystander := seedBrother(t, "jane@example.com", "janedoe", false)
	item, _ := invSvc.CreateItem("Drill", "power drill", nil, 1)

	for i := 0; i < 2; i++ {
		_, err := resSvc.Create("trip", time.Now(), time.Now().AddDate(0, 0, 2), item, victim)
		assert.NoError(t, err)
	}
	kept, err := resSvc.Create("unrelated", time.Now(), time.Now().AddDate(0, 0, 2), item, bystander)
	assert.NoError(t, err)

	c, w := jsonContext(t, "DELETE", "/api/v1/brothers/2", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "2"}}
	actAs(c, admin)
	removeBrother(c)

	assert.Equal(t, http.StatusOK, w.Code)

	remaining, err := resSvc.List()
	assert.NoError(t, err)
	assert.Equal(t, 1, len(remaining))
	assert.Equal(t, kept.ID, remaining[0].ID)

	var count int64
	db.Model(&models.Brother{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestGrantAdminSendsMail(t *testing.T) {
	notifier := setupTest(t)
	admin := seedBrother(t, "boss@example.com", "bossman", true)
	member := seedBrother(t, "john@example.com", "johndoe", false)

	c, w := jsonContext(t, "POST", "/api/v1/brothers/2/grant_admin", nil)
	c.Params = gin.Params{gin.Param{Key: "id", Value: "2"}}
	actAs(c, admin)
	grantAdmin(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var stored models.Brother
	db.First(&stored, member.ID)
	assert.True(t, stored.IsAdmin)
	assert.Equal(t, 1, len(notifier.sent))
	assert.Equal(t, "john@example.com", notifier.sent[0].To)
	assert.Equal(t, adminStatusSubject, notifier.sent[0].Subject)
}

func TestAssignShelfPreconditionStatus(t *testing.T) {
	setupTest(t)
	admin := seedBrother(t, "boss@example.com", "bossman", true)
	item, _ := invSvc.CreateItem("Drill", "power drill", nil, 1)

	c, w := jsonContext(t, "POST", "/api/v1/items/1/assign_shelf", map[string]interface{}{
		"shelfId": 1,
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	actAs(c, admin)
	assignShelfToItem(c)

	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	stored, _ := invSvc.GetItem(item.ID)
	assert.Nil(t, stored.ShelfID)
}

func TestCreateItemDuplicateStatus(t *testing.T) {
	setupTest(t)
	admin := seedBrother(t, "boss@example.com", "bossman", true)
	_, err := invSvc.CreateItem("Drill", "power drill", nil, 1)
	assert.NoError(t, err)

	c, w := jsonContext(t, "POST", "/api/v1/items", map[string]interface{}{
		"name":        "Drill",
		"description": "another drill",
		"quantity":    2,
	})
	actAs(c, admin)
	createItem(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestItemQuantityZero(t *testing.T) {
	setupTest(t)
	admin := seedBrother(t, "boss@example.com", "bossman", true)

	c, w := jsonContext(t, "POST", "/api/v1/items", map[string]interface{}{
		"name":        "Drill",
		"description": "power drill",
		"quantity":    0,
	})
	actAs(c, admin)
	createItem(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(0), response["quantity"])

	// editing down to zero works too
	c, w = jsonContext(t, "PUT", "/api/v1/items/1", map[string]interface{}{
		"name":        "Drill",
		"description": "power drill",
		"quantity":    0,
	})
	c.Params = gin.Params{gin.Param{Key: "id", Value: "1"}}
	actAs(c, admin)
	editItem(c)

	assert.Equal(t, http.StatusOK, w.Code)

	stored, err := invSvc.GetItem(1)
	assert.NoError(t, err)
	assert.Equal(t, 0, stored.Quantity)
}

func TestRepairEndpoint(t *testing.T) {
	setupTest(t)
	admin := seedBrother(t, "boss@example.com", "bossman", true)

	orphanShelf := models.Shelf{Name: "B1"}
	assert.NoError(t, db.Create(&orphanShelf).Error)
	broken := models.Item{Name: "Saw", ShelfID: &orphanShelf.ID}
	assert.NoError(t, db.Create(&broken).Error)

	c, w := jsonContext(t, "POST", "/api/v1/maintenance/repair", nil)
	actAs(c, admin)
	repairHierarchy(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["repaired"])
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	setupTest(t)

	c, w := jsonContext(t, "GET", "/api/v1/items", nil)
	authRequired(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())
}

func TestAuthRequiredAcceptsSession(t *testing.T) {
	setupTest(t)
	member := seedBrother(t, "john@example.com", "johndoe", false)

	raw, err := tokens.Session(member)
	assert.NoError(t, err)

	c, w := jsonContext(t, "GET", "/api/v1/items", nil)
	c.Request.Header.Set("Authorization", "Bearer "+raw)
	authRequired(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, member.ID, currentBrother(c).BrotherID)
}

func TestHealthCheck(t *testing.T) {
	setupTest(t)

	c, w := jsonContext(t, "GET", "/manage/health", nil)
	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListReservationsFilter(t *testing.T) {
	setupTest(t)
	member := seedBrother(t, "john@example.com", "johndoe", false)
	other := seedBrother(t, "jane@example.com", "janedoe", false)
	item, _ := invSvc.CreateItem("Drill", "power drill", nil, 1)

	_, err := resSvc.Create("one", time.Now(), time.Now().AddDate(0, 0, 2), item, member)
	assert.NoError(t, err)
	_, err = resSvc.Create("two", time.Now(), time.Now().AddDate(0, 0, 2), item, other)
	assert.NoError(t, err)

	c, w := jsonContext(t, "GET", "/api/v1/reservations?brotherId=1", nil)
	actAs(c, member)
	listReservations(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, 1, len(response))
	assert.Equal(t, "one", response[0]["reason"])
}
