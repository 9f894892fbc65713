package inventory

import (
	"context"
	"fmt"

	"github.com/MeneDev/devchange/device"
	"github.com/google/gousb"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const StatusOK = "OK"

var _ Provider = (*USBProvider)(nil)

// USBProvider lists USB devices through libusb. Devices are never opened,
// only their descriptors are read.
type USBProvider struct {
	usbContext *gousb.Context
}

func USBProviderNew() *USBProvider {
	return &USBProvider{usbContext: gousb.NewContext()}
}

func (p *USBProvider) Snapshot(ctx context.Context) (device.Snapshot, error) {
	records := make([]device.Record, 0)

	_, err := p.usbContext.OpenDevices(func(d *gousb.DeviceDesc) bool {
		records = append(records, device.Record{Id: usbDeviceId(d), Status: StatusOK})
		return false
	})

	if err != nil {
		return device.Snapshot{}, &EnumerationError{Source: "usb", Err: errors.Wrap(err, "libusb device list")}
	}

	log.Debug().Int("devices", len(records)).Msg("enumerated usb devices")
	return device.SnapshotNew(records...), nil
}

func (p *USBProvider) Close() error {
	if p.usbContext != nil {
		return p.usbContext.Close()
	}
	return nil
}

func usbDeviceId(d *gousb.DeviceDesc) string {
	return fmt.Sprintf("USB\\VID_%s&PID_%s\\%d.%d", d.Vendor, d.Product, d.Bus, d.Address)
}
