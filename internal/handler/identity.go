package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/service"
)

// UserUIDHeader 携带外部身份服务颁发的用户标识。
// 身份验证由上游完成，这里只负责把标识映射到本地用户记录。
const UserUIDHeader = "X-User-UID"

const contextUserKey = "__current_user"

// RequireUser 校验请求头中的用户标识并加载对应用户，失败时中断请求。
func (a *API) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader(UserUIDHeader))
		if uid == "" {
			respondError(c, http.StatusUnauthorized, "缺少用户标识")
			c.Abort()
			return
		}

		user, err := a.users.GetByUID(uid)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				respondError(c, http.StatusNotFound, "用户不存在")
			} else {
				respondError(c, http.StatusInternalServerError, "加载用户失败")
			}
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// currentUser 从请求上下文取出 RequireUser 加载的用户。
func currentUser(c *gin.Context) *db.User {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	user, ok := value.(*db.User)
	if !ok {
		return nil
	}
	return user
}
