package service

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gitlab.com/dirk.krummacker/careteam-service/internal/config"
	"gitlab.com/dirk.krummacker/careteam-service/internal/docid"
	"gitlab.com/dirk.krummacker/careteam-service/internal/emailaddress"
	"gitlab.com/dirk.krummacker/careteam-service/internal/messaging"
	"gitlab.com/dirk.krummacker/careteam-service/internal/model"
	"gitlab.com/dirk.krummacker/careteam-service/internal/store"
)

// contacts is the handle to the contact documents.
var contacts store.ContactStore

// messages is the handle to the message records.
var messages store.MessageStore

// emailer sends emails through the configured provider.
var emailer *messaging.EmailMessenger

// texter composes SMS messages.
var texter *messaging.SMSMessenger

// logger is the structured logger of the service layer.
var logger = zerolog.Nop()

// sweepWG tracks running duplicate sweeps. Production code never waits on
// it; tests do, to observe the fire-and-forget goroutine.
var sweepWG sync.WaitGroup

// SetupStores wires the document stores into the handlers. The arguments
// can be real stores for production use or mocks within unit tests.
func SetupStores(contactStore store.ContactStore, messageStore store.MessageStore) {
	contacts = contactStore
	messages = messageStore
}

// SetupMessaging wires the messengers into the handlers.
func SetupMessaging(email *messaging.EmailMessenger, sms *messaging.SMSMessenger) {
	emailer = email
	texter = sms
}

// SetupLogger replaces the no-op default logger.
func SetupLogger(log zerolog.Logger) {
	logger = log
}

// SetupHttpRouter initializes the REST API router and registers all
// endpoints. AJAX callers from any origin are allowed, and the static
// frontend is served at / and /static.
func SetupHttpRouter(settings config.Settings) *gin.Engine {
	var router *gin.Engine
	if strings.EqualFold(settings.GinLogging, "off") {
		router = gin.New()
		router.Use(gin.Recovery())
	} else {
		router = gin.Default()
	}
	// Credentialed CORS must echo the caller's origin; the * wildcard is
	// not allowed together with cookies.
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
	}))

	router.StaticFile("/", filepath.Join(settings.StaticDir, "index.html"))
	router.Static("/static", settings.StaticDir)

	router.GET("/users/", findAllUsers)
	router.GET("/users/names", findUserNames)
	router.POST("/contacts", createContact)
	router.GET("/contacts/search", searchContacts)
	router.GET("/contacts/:id", findContactByID)
	router.PUT("/contacts/:id", updateContactByID)
	router.DELETE("/contacts/:id", deleteContactByID)
	router.GET("/emails/validate", validateEmailAddress)
	router.POST("/messages/email", sendEmailMessage)
	router.POST("/messages/sms", composeSMSMessage)
	router.GET("/messages/voice", composeVoiceURI)
	router.GET("/messages/templates", listTemplates)
	router.POST("/messages/templates/render", renderTemplate)
	router.GET("/messages/:id", findMessageByID)
	return router
}

// findAllUsers responds with the list of all contacts as JSON.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/users/"
func findAllUsers(c *gin.Context) {
	results, err := contacts.FindAll(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, results)
}

// findUserNames responds with the sorted full names of all contacts.
// Contacts without any name are skipped.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/users/names"
func findUserNames(c *gin.Context) {
	results, err := contacts.FindAll(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	names := make([]string, 0, len(results))
	for _, contact := range results {
		if name := contact.FullName(); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	c.IndentedJSON(http.StatusOK, gin.H{"names": names})
}

// createContact validates the contact in the request's JSON, inserts it
// into the document store and responds with the newly assigned id. After
// the response, a fire-and-forget sweep checks the new contact against
// existing ones with the same name and flags it if emails or phones
// overlap.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"first": "Erika", "last": "Mustermann", "email": ["erika@example.com"], "phone": ["+49 0815 4711"]}'
func createContact(c *gin.Context) {
	var newContact model.Contact
	if err := c.ShouldBindJSON(&newContact); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if failures := newContact.Validate(); len(failures) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"details": failures,
		})
		return
	}
	newContact.Id = ""
	newContact.PossibleDuplicate = false
	id, err := contacts.Insert(c.Request.Context(), &newContact)
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, gin.H{"id": id, "message": "Contact created successfully"})

	sweepWG.Add(1)
	go func(contact model.Contact, contactID string) {
		defer sweepWG.Done()
		checkForDuplicateContact(contact, contactID)
	}(newContact, id)
}

// searchContacts responds with the contacts whose first or last name
// matches the 'query' URL parameter, ignoring case. Without a query, all
// contacts are returned.
//
// Example REST API calls:
//
//	> curl "http://localhost:8080/contacts/search"
//	> curl "http://localhost:8080/contacts/search?query=mus"
func searchContacts(c *gin.Context) {
	results, err := contacts.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, results)
}

// findContactByID locates the contact whose ID matches the id parameter
// of the request URL and returns it as a response. The creation time
// embedded in the ID is surfaced as created_at.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/507f1f77bcf86cd799439011
func findContactByID(c *gin.Context) {
	id := c.Param("id")
	if !docid.IsValid(id) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}
	contact, err := contacts.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	if created, ok := docid.Timestamp(contact.Id); ok {
		contact.CreatedAt = &created
	}
	c.IndentedJSON(http.StatusOK, contact)
}

// updateContactByID validates the contact in the request's JSON and
// replaces the stored fields of the contact whose ID matches the id
// parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/507f1f77bcf86cd799439011 --request "PUT" --include --header "Content-Type: application/json" --data '{"first": "Erika", "last": "Mustermann", "phone": ["+49 1234 567890"]}'
func updateContactByID(c *gin.Context) {
	id := c.Param("id")
	if !docid.IsValid(id) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}
	var submitted model.Contact
	if err := c.ShouldBindJSON(&submitted); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if failures := submitted.Validate(); len(failures) > 0 {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Validation failed",
			"details": failures,
		})
		return
	}
	matched, err := contacts.Update(c.Request.Context(), id, &submitted)
	if err != nil {
		internalError(c, err)
		return
	}
	if matched == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"id": id, "message": "Contact updated successfully"})
}

// deleteContactByID deletes the contact whose ID matches the id parameter
// of the request URL from the document store.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/507f1f77bcf86cd799439011 --request "DELETE"
func deleteContactByID(c *gin.Context) {
	id := c.Param("id")
	if !docid.IsValid(id) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid contact ID"})
		return
	}
	deleted, err := contacts.Delete(c.Request.Context(), id)
	if err != nil {
		internalError(c, err)
		return
	}
	if deleted == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"id": id, "message": "Contact deleted successfully"})
}

// validateEmailAddress runs email validation on the 'address' URL
// parameter and reports the parsed components. Malformed addresses are
// not an error at the HTTP level; the response carries valid=false.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/emails/validate?address=erika@example.com"
func validateEmailAddress(c *gin.Context) {
	raw := c.Query("address")
	email, err := emailaddress.New(raw)
	if err != nil {
		c.IndentedJSON(http.StatusOK, gin.H{"valid": false, "address": raw, "error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"valid":           true,
		"address":         email.Address(),
		"username":        email.Username(),
		"domain":          email.Domain(),
		"common_provider": email.IsCommonProvider(),
		"domain_parts":    email.DomainParts(),
	})
}

// emailRequest is the request body of the email sending endpoint. When a
// template name is given, the body is rendered from it and the context.
type emailRequest struct {
	Recipient string                    `json:"recipient"`
	Subject   string                    `json:"subject"`
	Body      string                    `json:"body"`
	HTMLBody  string                    `json:"html_body"`
	Template  string                    `json:"template"`
	Context   messaging.TemplateContext `json:"context"`
	ContactId string                    `json:"contact_id"`
}

// emailResponse is the send outcome plus the ID of the stored message
// record.
type emailResponse struct {
	messaging.SendResult
	MessageID string `json:"message_id"`
}

// sendEmailMessage sends an email through the configured provider. The
// attempt is recorded in the messages collection: inserted as a draft,
// then updated to sent or failed. A failed provider send answers with
// status 502 and the same response shape.
//
// Example REST API call:
//
//	> curl http://localhost:8080/messages/email --request "POST" --include --header "Content-Type: application/json" --data '{"recipient": "erika@example.com", "subject": "Hello", "template": "greeting", "context": {"contact_name": "Erika", "user_name": "Dirk", "custom_message": "Long time no see."}}'
func sendEmailMessage(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	if !emailer.ValidateAddress(req.Recipient) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid recipient email address"})
		return
	}
	if req.Template != "" {
		req.Body = messaging.RenderTemplate(req.Template, req.Context)
	}

	record := model.Message{
		ContactId: req.ContactId,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
		HTMLBody:  req.HTMLBody,
		Provider:  emailer.Provider,
		Status:    model.StatusDraft,
	}
	messageID, err := messages.Insert(c.Request.Context(), &record)
	if err != nil {
		internalError(c, err)
		return
	}

	result := emailer.Send(c.Request.Context(), messaging.SendRequest{
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
		HTMLBody:  req.HTMLBody,
		ContactId: req.ContactId,
	})
	status := model.StatusSent
	if !result.Success {
		status = model.StatusFailed
	}
	if err := messages.SetStatus(c.Request.Context(), messageID, status, result.Error, result.DeliveredAt); err != nil {
		internalError(c, err)
		return
	}
	httpStatus := http.StatusOK
	if !result.Success {
		httpStatus = http.StatusBadGateway
	}
	c.IndentedJSON(httpStatus, emailResponse{SendResult: result, MessageID: messageID})
}

// smsRequest is the request body of the SMS composition endpoint.
type smsRequest struct {
	Phone string `json:"phone"`
	Body  string `json:"body"`
}

// composeSMSMessage validates the phone number and responds with the
// sms: URI for the message plus its segment breakdown. No provider send
// happens; opening the URI is left to the caller's device.
//
// Example REST API call:
//
//	> curl http://localhost:8080/messages/sms --request "POST" --include --header "Content-Type: application/json" --data '{"phone": "+49 0815 4711", "body": "See you at 5"}'
func composeSMSMessage(c *gin.Context) {
	var req smsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	composed, err := texter.Compose(req.Phone, req.Body)
	if errors.Is(err, messaging.ErrEmptyBody) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Message body cannot be empty"})
		return
	}
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid phone number"})
		return
	}
	c.IndentedJSON(http.StatusOK, composed)
}

// composeVoiceURI responds with the tel: URI for the 'phone' URL
// parameter.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/messages/voice?phone=%2B49%200815%204711"
func composeVoiceURI(c *gin.Context) {
	uri, err := messaging.VoiceURI(c.Query("phone"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid phone number"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"uri": uri})
}

// listTemplates responds with the catalog of message templates.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/messages/templates"
func listTemplates(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, gin.H{"templates": messaging.AvailableTemplates()})
}

// renderRequest is the request body of the template rendering endpoint.
type renderRequest struct {
	Template string                    `json:"template"`
	Context  messaging.TemplateContext `json:"context"`
}

// renderTemplate fills a message template with the submitted context and
// responds with the rendered text. Unknown template names fall back to
// the quick_note template.
//
// Example REST API call:
//
//	> curl http://localhost:8080/messages/templates/render --request "POST" --include --header "Content-Type: application/json" --data '{"template": "greeting", "context": {"contact_name": "Erika", "user_name": "Dirk", "custom_message": "Hello!"}}'
func renderTemplate(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"template": req.Template,
		"rendered": messaging.RenderTemplate(req.Template, req.Context),
	})
}

// findMessageByID locates the message record whose ID matches the id
// parameter of the request URL and returns it as a response.
//
// Example REST API call:
//
//	> curl http://localhost:8080/messages/507f1f77bcf86cd799439011
func findMessageByID(c *gin.Context) {
	id := c.Param("id")
	if !docid.IsValid(id) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}
	message, err := messages.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		return
	}
	if err != nil {
		internalError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, message)
}

// checkForDuplicateContact compares a freshly created contact against
// existing contacts with the same first and last name. When any email or
// phone overlaps, the new contact is flagged as a possible duplicate.
// The sweep runs detached from the request with its own deadline; a
// failure is logged and otherwise dropped.
func checkForDuplicateContact(contact model.Contact, contactID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	existing, err := contacts.FindByName(ctx, contact.First, contact.Last)
	if err != nil {
		logger.Error().Err(err).Str("contact_id", contactID).Msg("duplicate sweep failed")
		return
	}
	emails := make(map[string]bool)
	phones := make(map[string]bool)
	for _, other := range existing {
		if other.Id == contactID {
			continue
		}
		for _, email := range other.Email {
			emails[email] = true
		}
		for _, phone := range other.Phone {
			phones[phone] = true
		}
	}
	duplicate := false
	for _, email := range contact.Email {
		if emails[email] {
			duplicate = true
		}
	}
	for _, phone := range contact.Phone {
		if phones[phone] {
			duplicate = true
		}
	}
	if !duplicate {
		return
	}
	if err := contacts.MarkDuplicate(ctx, contactID); err != nil {
		logger.Error().Err(err).Str("contact_id", contactID).Msg("could not flag duplicate contact")
		return
	}
	logger.Info().Str("contact_id", contactID).Msg("contact flagged as possible duplicate")
}

// internalError logs the error and answers with a generic message, so
// store internals never leak into responses.
func internalError(c *gin.Context, err error) {
	logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
