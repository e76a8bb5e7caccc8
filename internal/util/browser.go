package util

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenBrowser 用系统默认浏览器打开地址
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		// rundll32 在老版本 Windows 上比 cmd /c start 稳定
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}

// OpenBrowserWithFallback 默认方式失败时依次尝试备选程序
func OpenBrowserWithFallback(url string) error {
	err := OpenBrowser(url)
	if err == nil {
		return nil
	}

	switch runtime.GOOS {
	case "windows":
		return exec.Command("explorer", url).Start()
	case "linux":
		for _, browser := range linuxBrowsers {
			if err := exec.Command(browser, url).Start(); err == nil {
				return nil
			}
		}
	}

	return err
}

var linuxBrowsers = []string{"google-chrome", "firefox", "chromium-browser", "sensible-browser"}

// LocalURL 本机访问地址
func LocalURL(port int, path string) string {
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("http://localhost:%d%s", port, path)
}
