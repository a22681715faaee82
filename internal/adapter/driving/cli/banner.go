package cli

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/diillson/finance-dashboard-go/pkg/version"
)

// displayWelcomeBanner prints the banner and version line.
func displayWelcomeBanner(versionStr string) {
	banner := `
     ______ _                                  _____            _     _                         _
    |  ____(_)                                |  __ \          | |   | |                       | |
    | |__   _ _ __   __ _ _ __   ___ ___      | |  | | __ _ ___| |__ | |__   ___   __ _ _ __ __| |
    |  __| | | '_ \ / _' | '_ \ / __/ _ \     | |  | |/ _' / __| '_ \| '_ \ / _ \ / _' | '__/ _' |
    | |    | | | | | (_| | | | | (_|  __/     | |__| | (_| \__ \ | | | |_) | (_) | (_| | | | (_| |
    |_|    |_|_| |_|\__,_|_| |_|\___\___|     |_____/ \__,_|___/_| |_|_.__/ \___/ \__,_|_|  \__,_|
    `
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(green(banner))
	fmt.Println(blue(fmt.Sprintf("Finance Dashboard CLI (v%s)", version.FormatVersion())))
}
