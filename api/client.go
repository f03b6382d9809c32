package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/hoshinonyaruko/snake-in-browser/logger"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
	"github.com/sirupsen/logrus"
)

// WebSocket 设置
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// KeyMessage 是浏览器发来的按键
type KeyMessage struct {
	Key string `json:"key"`
}

// client 连接 websocket 和游戏循环
type client struct {
	loop   Loop
	conn   *websocket.Conn
	id     int
	frames <-chan structs.Frame
	log    *logrus.Entry
}

func WebsocketHandler(loop Loop) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Log.WithError(err).Warn("websocket upgrade failed")
			return
		}

		id, frames := loop.Subscribe()
		cl := &client{
			loop:   loop,
			conn:   conn,
			id:     id,
			frames: frames,
			log:    logger.Log.WithFields(logrus.Fields{"client": id, "remote": c.ClientIP()}),
		}
		cl.log.Info("client connected")

		// 先发送当前画面，避免等待下一次刷新
		go cl.writePump(loop.Latest())
		go cl.readPump()
	}
}

// readPump 读取按键
func (c *client) readPump() {
	defer func() {
		c.loop.Unsubscribe(c.id)
		if err := c.conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("client disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg KeyMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket read error")
			}
			return
		}
		key, ok := snake.ParseKey(msg.Key)
		if !ok {
			c.log.WithField("key", msg.Key).Debug("ignored key")
			continue
		}
		if !c.loop.Press(key) {
			c.log.WithField("key", key.String()).Warn("input queue full, key dropped")
		}
	}
}

// writePump 推送画面并定时 Ping
func (c *client) writePump(first structs.Frame) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	if len(first.PNG) > 0 {
		if !c.send(first) {
			return
		}
	}

	for {
		select {
		case frame, ok := <-c.frames:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.send(frame) {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

func (c *client) send(frame structs.Frame) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(newFrameMessage(frame)); err != nil {
		c.log.WithError(err).Debug("write frame failed")
		return false
	}
	return true
}
