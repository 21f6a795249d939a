package constants

const (
	Version     = "0.1.0"
	ServiceName = "ebrains-util"
	ProjectURL  = "https://github.com/xgui3783/ebrains-util"
)
