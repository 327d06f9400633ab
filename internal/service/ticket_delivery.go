package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sefazor/eventreg-backend/internal/metrics"
	"github.com/sefazor/eventreg-backend/internal/models"
	"github.com/sefazor/eventreg-backend/pkg/qrcode"
	"github.com/sefazor/eventreg-backend/pkg/storage"
	"go.uber.org/zap"
)

const defaultDeliveryTimeout = 30 * time.Second

// TicketMailer sends the ticket notification for a fresh registration.
type TicketMailer interface {
	SendTicketEmail(ctx context.Context, to, name, eventTitle, ticketCode, qrURL string) error
}

// TicketDelivery pushes a committed ticket out of the request path: the QR
// image is archived to object storage and the holder gets an e-mail linking
// to the archived image. Either channel may be nil.
type TicketDelivery struct {
	qr      *qrcode.QRService
	mailer  TicketMailer
	archive storage.StorageService
	timeout time.Duration
	logger  *zap.Logger

	wg sync.WaitGroup
}

func NewTicketDelivery(qr *qrcode.QRService, mailer TicketMailer, archive storage.StorageService, timeout time.Duration, logger *zap.Logger) *TicketDelivery {
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}
	return &TicketDelivery{
		qr:      qr,
		mailer:  mailer,
		archive: archive,
		timeout: timeout,
		logger:  logger,
	}
}

func TicketObjectKey(ticketCode string) string {
	return "tickets/" + ticketCode + ".png"
}

// Dispatch runs Deliver in the background under the delivery timeout.
// Wait blocks until every dispatched job has returned.
func (d *TicketDelivery) Dispatch(user *models.User, event *models.Event, registration *models.Registration) {
	d.goWithTimeout(func(ctx context.Context) {
		_ = d.Deliver(ctx, user, event, registration)
	})
}

// DispatchRevoke runs Revoke in the background under the delivery timeout.
func (d *TicketDelivery) DispatchRevoke(ticketCodes []string) {
	d.goWithTimeout(func(ctx context.Context) {
		_ = d.Revoke(ctx, ticketCodes)
	})
}

func (d *TicketDelivery) goWithTimeout(job func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		job(ctx)
	}()
}

// Wait drains dispatched jobs. It gives up when ctx is done; the jobs still
// stop on their own timeout.
func (d *TicketDelivery) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Deliver runs every configured channel and joins their failures. The
// registration itself is never affected by the result.
func (d *TicketDelivery) Deliver(ctx context.Context, user *models.User, event *models.Event, registration *models.Registration) error {
	var errs []error
	var qrURL string

	if d.archive != nil {
		if err := d.archiveQRCode(ctx, registration.TicketCode); err != nil {
			metrics.TicketDeliveryFailures.WithLabelValues("storage").Inc()
			errs = append(errs, err)
		} else {
			qrURL = d.archive.PublicURL(TicketObjectKey(registration.TicketCode))
		}
	}

	if d.mailer != nil {
		err := d.mailer.SendTicketEmail(ctx, user.Email, user.Name, event.Title, registration.TicketCode, qrURL)
		if err != nil {
			metrics.TicketDeliveryFailures.WithLabelValues("email").Inc()
			errs = append(errs, fmt.Errorf("send ticket email: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		d.logger.Warn("ticket delivery incomplete",
			zap.String("ticket", registration.TicketCode),
			zap.Uint("event_id", event.ID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Revoke removes the archived QR images of tickets that no longer exist.
func (d *TicketDelivery) Revoke(ctx context.Context, ticketCodes []string) error {
	if d.archive == nil {
		return nil
	}

	var errs []error
	for _, code := range ticketCodes {
		if err := d.archive.Delete(ctx, TicketObjectKey(code)); err != nil {
			metrics.TicketDeliveryFailures.WithLabelValues("storage").Inc()
			errs = append(errs, fmt.Errorf("remove archived ticket %s: %w", code, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		d.logger.Warn("archived tickets not removed", zap.Int("tickets", len(ticketCodes)), zap.Error(err))
		return err
	}
	return nil
}

func (d *TicketDelivery) archiveQRCode(ctx context.Context, ticketCode string) error {
	png, err := d.qr.GenerateQRCode(ticketCode)
	if err != nil {
		return err
	}
	if err := d.archive.Upload(ctx, TicketObjectKey(ticketCode), bytes.NewReader(png), "image/png"); err != nil {
		return fmt.Errorf("archive ticket QR: %w", err)
	}
	return nil
}
