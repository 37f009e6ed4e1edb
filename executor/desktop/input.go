package desktop

import (
	"time"

	"github.com/go-vgo/robotgo"
	log "github.com/sirupsen/logrus"
)

const clickHold = 100 * time.Millisecond

// Robot synthesizes mouse and keyboard events on the local desktop.
type Robot struct{}

func NewRobot() *Robot {
	return &Robot{}
}

func (r *Robot) Click(x, y int) error {
	log.Debugf("Moving mouse to (%d, %d)", x, y)
	robotgo.Move(x, y)
	if err := robotgo.Toggle("left"); err != nil {
		return err
	}
	time.Sleep(clickHold)
	return robotgo.Toggle("left", "up")
}

func (r *Robot) Type(text string) error {
	robotgo.TypeStr(text)
	return nil
}

func (r *Robot) PressEnter() error {
	return robotgo.KeyTap("enter")
}
