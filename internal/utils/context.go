package utils

import (
	"fmt"

	"github.com/commodore-dev/commodore/internal/models"
	"github.com/commodore-dev/commodore/internal/types"
	"github.com/gin-gonic/gin"
)

func GetCurrentUser(ctx *gin.Context) (*models.ClubUser, error) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return nil, fmt.Errorf("user not authenticated")
	}

	user, ok := value.(*models.ClubUser)

	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}

	return user, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}
