package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/apperrors"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = errors.New("invalid credentials")

type UserController struct {
	Store store.Store
}

func NewUserController(s store.Store) *UserController {
	return &UserController{Store: s}
}

// Login checks email and password and returns a JWT carrying the user's
// restaurant and role.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}

	user, err := uc.Store.FindUserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
			return
		}
		utils.RespondAppError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errInvalidCredentials)
		return
	}

	token, err := utils.GenerateToken(user.ID, user.RestaurantID, string(user.Role))
	if err != nil {
		utils.RespondAppError(c, apperrors.Internal(err))
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"user":          user.Email,
		"role":          user.Role,
		"restaurant_id": user.RestaurantID,
	}).Info("Login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":         token,
		"expires_in":    int(utils.TokenTTL.Seconds()),
		"user_role":     user.Role,
		"restaurant_id": user.RestaurantID,
	})
}

// Logout revokes the presented token until it would have expired anyway.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(utils.CtxToken)
	expiry, _ := c.Get(utils.CtxTokenExpiry)
	expiresAt, _ := expiry.(time.Time)
	utils.BlacklistToken(token, expiresAt)

	utils.InfoLogger.WithField("user_id", c.GetString(utils.CtxUserID)).Info("Logout")
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.Store.FindUser(c.Request.Context(), c.GetString(utils.CtxUserID))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}
