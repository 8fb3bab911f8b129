package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chsky1600/qicas/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// ParseYearParam 从路径参数解析学年。
// 超出 [2000, 2100] 视为非法，返回 false 并写入 400 响应。
func ParseYearParam(c *gin.Context, name string) (int, bool) {
	year, err := strconv.Atoi(c.Param(name))
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(c, 10001, "学年参数非法")
		return 0, false
	}
	return year, true
}

// ParseYearQuery 从查询参数解析学年。
func ParseYearQuery(c *gin.Context, name string) (int, bool) {
	year, err := strconv.Atoi(c.Query(name))
	if err != nil || year < 2000 || year > 2100 {
		response.BadRequest(c, 10001, "学年参数非法")
		return 0, false
	}
	return year, true
}
