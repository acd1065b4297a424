package shigure

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/shigure/uistate"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// effectResponse is returned by endpoints that start a timed effect. State is
// the snapshot right after the effect's first write.
type effectResponse struct {
	Effect string        `json:"effect"`
	State  uistate.State `json:"state"`
}

func (a *App) handleUIState(c echo.Context) error {
	return c.JSON(http.StatusOK, a.UI.State())
}

func (a *App) handleUIUpdate(c echo.Context) error {
	var p uistate.Patch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid state patch")
	}
	return c.JSON(http.StatusOK, a.UI.Update(p))
}

func (a *App) handleUIHideMascot(c echo.Context) error {
	task := a.UI.HiddenMascot()
	return c.JSON(http.StatusAccepted, effectResponse{Effect: task.Name(), State: a.UI.State()})
}

func (a *App) handleUITip(c echo.Context) error {
	var p uistate.Patch
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid tip")
	}
	task := a.UI.ShowTip(p)
	return c.JSON(http.StatusAccepted, effectResponse{Effect: task.Name(), State: a.UI.State()})
}

// handleUIStream sends the current state, then every later change, until the
// client goes away.
func (a *App) handleUIStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already answered the request.
		a.Log.Debug("websocket upgrade failed", zap.Error(err))
		return nil
	}
	defer conn.Close()

	updates, unsubscribe := a.UI.Subscribe()
	defer unsubscribe()

	// Reads only serve to notice the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeState(conn, a.UI.State()); err != nil {
		return nil
	}
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()
	for {
		select {
		case st := <-updates:
			if err := writeState(conn, st); err != nil {
				a.Log.Debug("websocket write failed", zap.Error(err))
				return nil
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func writeState(conn *websocket.Conn, st uistate.State) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(st)
}
