package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// Launcher implements the BrowserLauncher interface by shelling out to the
// platform's URL opener.
type Launcher struct {
	openers []opener
}

type opener struct {
	command string
	args    func(url string) []string
}

// NewLauncher creates a new browser launcher
func NewLauncher() *Launcher {
	return &Launcher{openers: detectOpeners()}
}

// Launch opens a URL in the default browser without waiting for it to close.
func (l *Launcher) Launch(url string) error {
	open, err := l.selectOpener()
	if err != nil {
		return err
	}

	cmd := exec.Command(open.command, open.args(url)...) // #nosec G204 - command comes from the fixed opener table
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launching browser: %w", err)
	}

	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

func (l *Launcher) selectOpener() (*opener, error) {
	for _, candidate := range l.openers {
		if _, err := exec.LookPath(candidate.command); err == nil {
			return &candidate, nil
		}
	}

	return nil, errors.New("no supported browser opener found on this system")
}

func detectOpeners() []opener {
	passthrough := func(url string) []string { return []string{url} }

	switch runtime.GOOS {
	case "darwin":
		return []opener{{command: "open", args: passthrough}}
	case "windows":
		return []opener{{
			command: "rundll32",
			args:    func(url string) []string { return []string{"url.dll,FileProtocolHandler", url} },
		}}
	default:
		return []opener{
			{command: "xdg-open", args: passthrough},
			{command: "sensible-browser", args: passthrough},
			{command: "x-www-browser", args: passthrough},
		}
	}
}
