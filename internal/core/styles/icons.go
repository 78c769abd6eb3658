package styles

var (
	IconCheck   = "✔"
	IconWarn    = "⚠"
	IconCross   = "✘"
	IconArrow   = "→"
	IconBullet  = "•"
	IconPending = "…"
)
