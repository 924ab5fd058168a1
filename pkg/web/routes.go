// Package web provides the routes of the community API service.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tortoise-community/tortoise-bot/pkg/config"
	"github.com/tortoise-community/tortoise-bot/pkg/database"
	"github.com/tortoise-community/tortoise-bot/pkg/models"
	"github.com/tortoise-community/tortoise-bot/pkg/mqtt"
)

// SetupRoutes sets up the public and private API routes
func SetupRoutes(s *Server) {
	api := s.Group("/api")
	{
		api.GET("/status", statusHandler)
		api.GET("/health", healthHandler)
	}

	private := s.Group("/private", s.authMiddleware())
	{
		private.GET("/members/", listMembersHandler)
		private.POST("/members/", createMemberHandler)
		private.GET("/members/:id/roles/", memberRolesHandler)
		private.GET("/members/edit/:id/", getMemberHandler)
		private.PUT("/members/edit/:id/", editMemberHandler)

		private.GET("/rules/", listRulesHandler)

		private.GET("/suggestions/", listSuggestionsHandler)
		private.POST("/suggestions/", createSuggestionHandler)
		private.GET("/suggestions/:id/", getSuggestionHandler)
		private.PUT("/suggestions/:id/", updateSuggestionHandler)
		private.DELETE("/suggestions/:id/", deleteSuggestionHandler)

		private.GET("/member/meta/:id/", getMemberMetaHandler)
		private.PUT("/member/meta/:id/", updateMemberMetaHandler)

		private.GET("/verify-confirmation/:id/", verifyConfirmationHandler)
		private.PUT("/verify-confirmation/:id/", confirmVerificationHandler)
	}
}

// statusHandler returns the service and database status
func statusHandler(c *gin.Context) {
	db := database.Get()
	dbStatus, dbOnline := db.GetStatus()

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": config.Version,
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Tortoise community API is running",
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
}

// listMembersHandler returns every stored member record
func listMembersHandler(c *gin.Context) {
	members, err := database.GlobalMemberDM.GetAll(bson.M{})
	if err != nil {
		internalError(c, err)
		return
	}

	out := make([]models.Member, 0, len(members))
	for _, m := range members {
		out = append(out, *m)
	}
	c.JSON(http.StatusOK, out)
}

// createMemberHandler stores a first-time joiner and seeds their meta record
func createMemberHandler(c *gin.Context) {
	var payload models.Member
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	if _, err := database.GlobalMemberDM.Set(bson.M{"user_id": payload.UserID}, payload); err != nil {
		internalError(c, err)
		return
	}

	// Seed meta only for genuinely new members
	meta, err := database.GlobalMemberMetaDM.Get(bson.M{"user_id": payload.UserID})
	if err == nil && meta == nil {
		_, _ = database.GlobalMemberMetaDM.Set(bson.M{"user_id": payload.UserID}, bson.M{
			"user_id":     payload.UserID,
			"warnings":    []string{},
			"muted_until": nil,
			"mod_mail":    true,
			"perks":       0,
		})
	}

	c.JSON(http.StatusCreated, payload)
}

// memberRolesHandler returns the stored role list for a member
func memberRolesHandler(c *gin.Context) {
	member, err := database.GlobalMemberDM.Get(bson.M{"user_id": c.Param("id")})
	if err != nil {
		internalError(c, err)
		return
	}
	if member == nil {
		notFound(c)
		return
	}

	roles := member.Roles
	if roles == nil {
		roles = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}

// getMemberHandler returns the full stored record for a member
func getMemberHandler(c *gin.Context) {
	member, err := database.GlobalMemberDM.Get(bson.M{"user_id": c.Param("id")})
	if err != nil {
		internalError(c, err)
		return
	}
	if member == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, member)
}

// editMemberHandler applies a partial update to a member record. Only the
// fields present in the payload are touched; leave_date may be set to null
// explicitly to clear it.
func editMemberHandler(c *gin.Context) {
	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	update := bson.M{}
	for _, key := range []string{"member", "name", "tag"} {
		if value, present := payload[key]; present {
			update[key] = value
		}
	}

	if value, present := payload["leave_date"]; present {
		if value == nil {
			update["leave_date"] = nil
		} else if raw, ok := value.(string); ok {
			parsed, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				badRequest(c, err)
				return
			}
			update["leave_date"] = parsed
		}
	}

	if value, present := payload["roles"]; present {
		raw, ok := value.([]interface{})
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "roles must be a list."})
			return
		}
		roles := make([]string, 0, len(raw))
		for _, entry := range raw {
			if role, ok := entry.(string); ok {
				roles = append(roles, role)
			}
		}
		update["roles"] = roles
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No editable fields in payload."})
		return
	}

	member, err := database.GlobalMemberDM.Set(bson.M{"user_id": c.Param("id")}, update)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// listRulesHandler returns the community rules
func listRulesHandler(c *gin.Context) {
	rules, err := database.GlobalRuleDM.GetAll(bson.M{})
	if err != nil {
		internalError(c, err)
		return
	}

	out := make([]models.Rule, 0, len(rules))
	for _, r := range rules {
		out = append(out, *r)
	}
	c.JSON(http.StatusOK, out)
}

// listSuggestionsHandler returns every stored suggestion
func listSuggestionsHandler(c *gin.Context) {
	suggestions, err := database.GlobalSuggestionDM.GetAll(bson.M{})
	if err != nil {
		internalError(c, err)
		return
	}

	out := make([]models.Suggestion, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, *s)
	}
	c.JSON(http.StatusOK, out)
}

// createSuggestionHandler stores a suggestion under its Discord message ID
func createSuggestionHandler(c *gin.Context) {
	var payload models.Suggestion
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}
	if payload.Status == "" {
		payload.Status = models.SuggestionPending
	}

	if _, err := database.GlobalSuggestionDM.Set(bson.M{"message_id": payload.MessageID}, payload); err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

// getSuggestionHandler returns one suggestion by message ID
func getSuggestionHandler(c *gin.Context) {
	suggestion, err := database.GlobalSuggestionDM.Get(bson.M{"message_id": c.Param("id")})
	if err != nil {
		internalError(c, err)
		return
	}
	if suggestion == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// updateSuggestionHandler resolves a suggestion with a status and reason
func updateSuggestionHandler(c *gin.Context) {
	suggestion, err := database.GlobalSuggestionDM.Get(bson.M{"message_id": c.Param("id")})
	if err != nil {
		internalError(c, err)
		return
	}
	if suggestion == nil {
		notFound(c)
		return
	}

	var payload models.SuggestionUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	updated, err := database.GlobalSuggestionDM.Set(bson.M{"message_id": c.Param("id")}, bson.M{
		"status": payload.Status,
		"reason": payload.Reason,
	})
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// deleteSuggestionHandler removes a suggestion. Answers 204 on success.
func deleteSuggestionHandler(c *gin.Context) {
	suggestion, err := database.GlobalSuggestionDM.Get(bson.M{"message_id": c.Param("id")})
	if err != nil {
		internalError(c, err)
		return
	}
	if suggestion == nil {
		notFound(c)
		return
	}

	if err := database.GlobalSuggestionDM.Delete(bson.M{"message_id": c.Param("id")}); err != nil {
		internalError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// getMemberMetaHandler returns the moderation metadata for a member.
// Verification state and leave date live on the member record and are
// merged in, so the bot reads one consistent view.
func getMemberMetaHandler(c *gin.Context) {
	userID := c.Param("id")

	member, err := database.GlobalMemberDM.Get(bson.M{"user_id": userID})
	if err != nil {
		internalError(c, err)
		return
	}
	if member == nil {
		notFound(c)
		return
	}

	meta, err := database.GlobalMemberMetaDM.Get(bson.M{"user_id": userID})
	if err != nil {
		internalError(c, err)
		return
	}

	out := models.MemberMeta{UserID: userID}
	if meta != nil {
		out = *meta
	}
	out.Verified = member.Verified
	out.LeaveDate = member.LeaveDate
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	c.JSON(http.StatusOK, out)
}

// updateMemberMetaHandler applies a partial update to a member's meta
func updateMemberMetaHandler(c *gin.Context) {
	userID := c.Param("id")

	member, err := database.GlobalMemberDM.Get(bson.M{"user_id": userID})
	if err != nil {
		internalError(c, err)
		return
	}
	if member == nil {
		notFound(c)
		return
	}

	var payload map[string]interface{}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, err)
		return
	}

	update := bson.M{}
	for _, key := range []string{"warnings", "muted_until", "mod_mail", "perks"} {
		if value, present := payload[key]; present {
			update[key] = value
		}
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No editable fields in payload."})
		return
	}

	meta, err := database.GlobalMemberMetaDM.Set(bson.M{"user_id": userID}, update)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, meta)
}

// verifyConfirmationHandler reports whether a member passed verification.
// Answers {"verified": bool} or 404 when the member is unknown.
func verifyConfirmationHandler(c *gin.Context) {
	member, err := database.GlobalMemberDM.Get(bson.M{"user_id": c.Param("id")})
	if err != nil {
		internalError(c, err)
		return
	}
	if member == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": member.Verified})
}

// confirmVerificationHandler marks a member as verified. The website calls
// this once the member completes the verification flow.
func confirmVerificationHandler(c *gin.Context) {
	member, err := database.GlobalMemberDM.Get(bson.M{"user_id": c.Param("id")})
	if err != nil {
		internalError(c, err)
		return
	}
	if member == nil {
		notFound(c)
		return
	}

	updated, err := database.GlobalMemberDM.Set(bson.M{"user_id": c.Param("id")}, bson.M{"verified": true})
	if err != nil {
		internalError(c, err)
		return
	}

	// Tell the bot so it can grant guild access right away
	if mc := mqtt.Get(); mc != nil {
		mc.PublishEvent("member_verified", gin.H{"user_id": c.Param("id")})
	}

	c.JSON(http.StatusOK, gin.H{"verified": updated.Verified})
}
