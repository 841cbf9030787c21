package worker

import (
	"github.com/campus-fixit/fixit/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartWidgetJanitor begins sweeping idle widgets. The returned func
// stops it and closes every widget.
func StartWidgetJanitor(widgets *service.WidgetService) func() {
	if widgets == nil {
		return func() {}
	}
	widgets.StartJanitor()
	return widgets.Stop
}
