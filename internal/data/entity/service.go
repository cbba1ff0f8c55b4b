package entity

// Gateway identifies the videoconference backend a service account belongs to.
type Gateway string

const (
	GatewayJitsi Gateway = "jitsi"
	GatewayZoom  Gateway = "zoom"
)

// Exclusive reports whether a service account of this gateway can host only
// one meet at a time. Zoom licenses are per-account; jitsi rooms are not.
func (g Gateway) Exclusive() bool {
	return g == GatewayZoom
}

// Service is one gateway account/instance (e.g. a single Zoom license)
// scoped to a tenant application.
type Service struct {
	BaseSimple
	AppID   string  `db:"app_id"`
	Gateway Gateway `db:"gateway"`
}
