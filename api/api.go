package api

import (
	_ "embed"
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

//go:embed static/index.html
var indexHTML []byte

// Loop 是 api 需要的游戏循环接口
type Loop interface {
	Press(k snake.Key) bool
	Latest() structs.Frame
	Subscribe() (int, <-chan structs.Frame)
	Unsubscribe(id int)
}

// FrameMessage 是推送给浏览器的一帧
type FrameMessage struct {
	Seq     uint64 `json:"seq"`
	Score   int    `json:"score"`
	Running bool   `json:"running"`
	Frame   string `json:"frame"` // data URL
}

func newFrameMessage(f structs.Frame) FrameMessage {
	return FrameMessage{
		Seq:     f.Seq,
		Score:   f.State.Score,
		Running: f.State.Running,
		Frame:   "data:image/png;base64," + base64.StdEncoding.EncodeToString(f.PNG),
	}
}

// NewRouter 注册所有路由
func NewRouter(loop Loop) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/", IndexHandler())
	router.GET("/ws", WebsocketHandler(loop))
	router.GET("/state", StateHandler(loop))
	router.GET("/frame.png", FrameHandler(loop))
	// 处理玩家改变方向
	router.GET("/update-direction", UpdateDirection(loop))
	router.POST("/reset", ResetHandler(loop))
	return router
}

func IndexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	}
}

func StateHandler(loop Loop) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := loop.Latest()
		c.JSON(http.StatusOK, gin.H{"seq": f.Seq, "state": f.State})
	}
}

func FrameHandler(loop Loop) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := loop.Latest()
		if len(f.PNG) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "No frame rendered yet"})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", f.PNG)
	}
}

func UpdateDirection(loop Loop) gin.HandlerFunc {
	return func(c *gin.Context) {
		newDirection := c.Query("direction")

		// 验证是否提供了必要的查询参数
		if newDirection == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: direction"})
			return
		}
		key, ok := snake.ParseKey(newDirection)
		if !ok || key == snake.KeyReset {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid direction '" + newDirection + "'"})
			return
		}
		press(c, loop, key, "Direction queued")
	}
}

func ResetHandler(loop Loop) gin.HandlerFunc {
	return func(c *gin.Context) {
		press(c, loop, snake.KeyReset, "Reset queued")
	}
}

func press(c *gin.Context, loop Loop, key snake.Key, message string) {
	if !loop.Press(key) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Input queue is full"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "key": key.String()})
}
