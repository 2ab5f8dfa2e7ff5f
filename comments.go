package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CommentInfo is a comment row joined with the author's name and
// email.
type CommentInfo struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	EventID   uint      `json:"event_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
}

// MyComment is the caller's comment joined with the event title.
type MyComment struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	EventID    uint      `json:"event_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	EventTitle string    `json:"event_title"`
}

type CommentRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

func ListComments(c *gin.Context) {
	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	comments := make([]CommentInfo, 0)
	err := DB.Table("event_comments").
		Select("event_comments.*, users.name, users.email").
		Joins("JOIN users ON users.id = event_comments.user_id").
		Where("event_comments.event_id = ?", eventID).
		Order("event_comments.created_at DESC").
		Scan(&comments).Error
	if err != nil {
		log.Error().Err(err).Uint("event_id", eventID).Msg("listing comments")
		jsonError(c, http.StatusInternalServerError, "Error fetching comments")
		return
	}

	c.JSON(http.StatusOK, comments)
}

func CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var body CommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validated before touching the store.
	if !validRating(body.Rating) {
		jsonError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	var existing EventComment
	err := DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&existing).Error
	if err == nil {
		jsonError(c, http.StatusBadRequest, "You have already commented on this event")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Msg("checking existing comment")
		jsonError(c, http.StatusInternalServerError, "Error adding comment")
		return
	}

	comment := EventComment{UserID: userID, EventID: eventID, Rating: body.Rating, Comment: body.Comment}
	if err := DB.Create(&comment).Error; err != nil {
		// The unique index on (user_id, event_id) is the real guard;
		// a request losing the race gets the same answer as one that
		// failed the check above.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			jsonError(c, http.StatusBadRequest, "You have already commented on this event")
			return
		}
		log.Error().Err(err).Msg("creating comment")
		jsonError(c, http.StatusInternalServerError, "Error adding comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Comment added successfully",
		"commentId": comment.ID,
	})
}

// fetchOwnComment loads a comment by (id, event, author). A missing
// row and someone else's row are indistinguishable on purpose.
func fetchOwnComment(c *gin.Context, eventID, userID uint) (EventComment, bool) {
	commentID, err := strconv.ParseUint(c.Param("commentId"), 10, 64)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid comment id")
		return EventComment{}, false
	}

	var comment EventComment
	err = DB.Where("id = ? AND event_id = ? AND user_id = ?", uint(commentID), eventID, userID).First(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			jsonError(c, http.StatusNotFound, "Comment not found or unauthorized")
		} else {
			log.Error().Err(err).Msg("loading comment")
			jsonError(c, http.StatusInternalServerError, "Error fetching comment")
		}
		return EventComment{}, false
	}
	return comment, true
}

func UpdateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var body CommentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		jsonError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !validRating(body.Rating) {
		jsonError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	comment, ok := fetchOwnComment(c, eventID, userID)
	if !ok {
		return
	}

	updates := map[string]interface{}{"rating": body.Rating, "comment": body.Comment}
	if err := DB.Model(&comment).Updates(updates).Error; err != nil {
		log.Error().Err(err).Msg("updating comment")
		jsonError(c, http.StatusInternalServerError, "Error updating comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment updated successfully"})
}

func DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	comment, ok := fetchOwnComment(c, eventID, userID)
	if !ok {
		return
	}

	if err := DB.Delete(&comment).Error; err != nil {
		log.Error().Err(err).Msg("deleting comment")
		jsonError(c, http.StatusInternalServerError, "Error deleting comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func GetMyComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		jsonError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	eventID, ok := parseEventID(c)
	if !ok {
		return
	}

	var comment MyComment
	err := DB.Table("event_comments").
		Select("event_comments.*, events.title AS event_title").
		Joins("JOIN events ON events.id = event_comments.event_id").
		Where("event_comments.user_id = ? AND event_comments.event_id = ?", userID, eventID).
		Take(&comment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		log.Error().Err(err).Msg("fetching comment")
		jsonError(c, http.StatusInternalServerError, "Error fetching comment")
		return
	}

	c.JSON(http.StatusOK, comment)
}
