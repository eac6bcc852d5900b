package notices

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/haythemsaa/boxibox-backend/pkg/config"
	"github.com/haythemsaa/boxibox-backend/pkg/db/models"
	"github.com/haythemsaa/boxibox-backend/pkg/enums"
	"github.com/haythemsaa/boxibox-backend/pkg/logger"
	"github.com/haythemsaa/boxibox-backend/pkg/types"
)

const (
	dateFormat     = "02/01/2006"
	dateTimeFormat = "02/01/2006 à 15:04"
)

// MessageSender is the external messaging collaborator. The engine only decides
// what to send; transport lives elsewhere.
type MessageSender interface {
	Send(ctx context.Context, channel enums.NoticeChannel, recipient, subject, content string) error
}

// Dispatcher creates and dispatches notices for an auction. The progressed
// return value tells the caller whether the escalation date field may advance.
type Dispatcher interface {
	Dispatch(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, settings models.AuctionSettings, noticeType enums.NoticeType) (*models.AuctionNotice, bool, error)
	DispatchResult(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, sold bool) error
	DispatchWinnerInstructions(ctx context.Context, tx *gorm.DB, auction *models.Auction) error
}

// ServiceParams configure the notice service.
type ServiceParams struct {
	Repo   Repository
	Sender MessageSender
	Logger *logger.Logger
	Config config.NoticesConfig
	Now    func() time.Time
}

type service struct {
	repo   Repository
	sender MessageSender
	logg   *logger.Logger
	cfg    config.NoticesConfig
	now    func() time.Time
}

// NewService wires a notice dispatcher.
func NewService(params ServiceParams) (Dispatcher, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notice repository required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("message sender required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:   params.Repo,
		sender: params.Sender,
		logg:   params.Logger,
		cfg:    params.Config,
		now:    now,
	}, nil
}

// Dispatch creates the notice row, renders its content, and attempts delivery
// according to the channel rules for the notice type:
//
//   - email channels report progressed only on send success, so a failed send
//     leaves the gate unsatisfied and the same notice is re-attempted next run;
//   - registered mail is queued for manual processing and always progresses,
//     with the final notice additionally attempting a best-effort backup email.
func (s *service) Dispatch(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, settings models.AuctionSettings, noticeType enums.NoticeType) (*models.AuctionNotice, bool, error) {
	repo := s.repo.WithTx(tx)
	channel := channelFor(noticeType)
	content := Render(s.templateFor(noticeType, settings), s.templateContext(auction, contract))

	notice := &models.AuctionNotice{
		AuctionID:  auction.ID,
		NoticeType: noticeType,
		Channel:    channel,
		Status:     enums.NoticeStatusPending,
		Content:    content,
	}

	if channel == enums.NoticeChannelRegisteredMail {
		meta, err := json.Marshal(map[string]any{
			"requires_manual_send": true,
			"recipient_address":    contract.CustomerAddress,
		})
		if err != nil {
			return nil, false, fmt.Errorf("marshaling notice metadata: %w", err)
		}
		notice.Metadata = meta
	}

	if err := repo.Create(ctx, notice); err != nil {
		return nil, false, fmt.Errorf("creating %s notice: %w", noticeType, err)
	}

	if channel == enums.NoticeChannelRegisteredMail {
		// Registered mail is dispatched manually by the operator; the
		// escalation clock does not wait for it.
		if noticeType == enums.NoticeTypeFinalNotice {
			if err := s.sender.Send(ctx, enums.NoticeChannelEmail, contract.CustomerEmail, SubjectFor(noticeType), content); err != nil {
				s.logg.Warn(s.logg.WithAuctionID(ctx, auction.ID.String()), "final notice backup email failed")
			}
		}
		return notice, true, nil
	}

	if err := s.sender.Send(ctx, channel, contract.CustomerEmail, SubjectFor(noticeType), content); err != nil {
		s.logg.Error(s.logg.WithAuctionID(ctx, auction.ID.String()), fmt.Sprintf("failed to send %s notice", noticeType), err)
		if markErr := repo.MarkFailed(ctx, notice.ID); markErr != nil {
			return nil, false, fmt.Errorf("marking notice failed: %w", markErr)
		}
		notice.Status = enums.NoticeStatusFailed
		return notice, false, nil
	}

	sentAt := s.now()
	if err := repo.MarkSent(ctx, notice.ID, sentAt); err != nil {
		return nil, false, fmt.Errorf("marking notice sent: %w", err)
	}
	notice.Status = enums.NoticeStatusSent
	notice.SentAt = &sentAt
	return notice, true, nil
}

// DispatchResult notifies the prior occupant of the auction outcome.
func (s *service) DispatchResult(ctx context.Context, tx *gorm.DB, auction *models.Auction, contract types.Contract, sold bool) error {
	repo := s.repo.WithTx(tx)

	content := "La vente aux enchères de votre box s'est terminée sans enchérisseur."
	if sold && auction.WinningBid != nil {
		content = fmt.Sprintf("Votre box a été vendu aux enchères pour %s.", formatAmount(*auction.WinningBid))
	}

	notice := &models.AuctionNotice{
		AuctionID:  auction.ID,
		NoticeType: enums.NoticeTypeAuctionResult,
		Channel:    enums.NoticeChannelEmail,
		Status:     enums.NoticeStatusPending,
		Content:    content,
	}
	if err := repo.Create(ctx, notice); err != nil {
		return fmt.Errorf("creating result notice: %w", err)
	}

	if err := s.sender.Send(ctx, enums.NoticeChannelEmail, contract.CustomerEmail, SubjectFor(enums.NoticeTypeAuctionResult), content); err != nil {
		s.logg.Error(s.logg.WithAuctionID(ctx, auction.ID.String()), "failed to send result notice", err)
		return repo.MarkFailed(ctx, notice.ID)
	}
	return repo.MarkSent(ctx, notice.ID, s.now())
}

// DispatchWinnerInstructions queues the payment-instructions notice for the
// winning bidder. Bidder contact details live outside this subsystem, so the
// row stays pending for the downstream messaging pipeline.
func (s *service) DispatchWinnerInstructions(ctx context.Context, tx *gorm.DB, auction *models.Auction) error {
	if auction.WinningBidderID == nil {
		return nil
	}
	meta, err := json.Marshal(map[string]any{
		"winner_payment_instructions": true,
		"winning_bidder_id":           auction.WinningBidderID.String(),
	})
	if err != nil {
		return fmt.Errorf("marshaling winner metadata: %w", err)
	}
	notice := &models.AuctionNotice{
		AuctionID:  auction.ID,
		NoticeType: enums.NoticeTypeAuctionResult,
		Channel:    enums.NoticeChannelEmail,
		Status:     enums.NoticeStatusPending,
		Metadata:   meta,
	}
	return s.repo.WithTx(tx).Create(ctx, notice)
}

func (s *service) templateContext(auction *models.Auction, contract types.Contract) TemplateContext {
	now := s.now()
	ctx := TemplateContext{
		CustomerName: contract.CustomerName,
		DebtAmount:   auction.TotalDebt,
		BoxNumber:    contract.BoxNumber,
		SiteName:     contract.SiteName,
		CompanyName:  contract.CompanyName,
		DaysOverdue:  auction.DaysOverdue,
		DeadlineDate: now.AddDate(0, 0, s.cfg.PaymentDeadlines).Format(dateFormat),
		PaymentURL:   s.cfg.PaymentURL,
	}
	if ctx.CustomerName == "" {
		ctx.CustomerName = "Client"
	}
	if ctx.CompanyName == "" {
		ctx.CompanyName = "BoxiBox"
	}
	if auction.AuctionStartDate != nil {
		ctx.AuctionDate = auction.AuctionStartDate.Format(dateTimeFormat)
	}
	return ctx
}

func (s *service) templateFor(noticeType enums.NoticeType, settings models.AuctionSettings) string {
	switch noticeType {
	case enums.NoticeTypeFirstWarning:
		if settings.FirstNoticeTemplate != nil {
			return *settings.FirstNoticeTemplate
		}
		return DefaultFirstNoticeTemplate
	case enums.NoticeTypeSecondWarning:
		if settings.SecondNoticeTemplate != nil {
			return *settings.SecondNoticeTemplate
		}
		return DefaultFirstNoticeTemplate
	case enums.NoticeTypeFinalNotice:
		if settings.FinalNoticeTemplate != nil {
			return *settings.FinalNoticeTemplate
		}
		return DefaultFinalNoticeTemplate
	case enums.NoticeTypeAuctionScheduled:
		return DefaultScheduledTemplate
	case enums.NoticeTypeAuctionReminder:
		return DefaultReminderTemplate
	default:
		return ""
	}
}

func channelFor(noticeType enums.NoticeType) enums.NoticeChannel {
	switch noticeType {
	case enums.NoticeTypeSecondWarning, enums.NoticeTypeFinalNotice:
		return enums.NoticeChannelRegisteredMail
	default:
		return enums.NoticeChannelEmail
	}
}
