package hostel

import (
	"context"
	"fmt"
	"strings"
)

func (s *Store) CreateNotice(ctx context.Context, title, body string) (*Notice, error) {
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidInput
	}

	var created Notice
	err := s.update(ctx, func(doc *Document) ([]Event, error) {
		created = Notice{
			NoticeID: s.newID("N"),
			Title:    title,
			Body:     body,
			Date:     s.today(),
			StampURL: defaultStampURL,
		}
		// newest first
		doc.Notices = append([]Notice{created}, doc.Notices...)

		return []Event{{
			Type:     EventNoticeCreated,
			EntityID: created.NoticeID,
			Data:     map[string]string{"title": title},
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) DeleteNotice(ctx context.Context, noticeID string) error {
	return s.update(ctx, func(doc *Document) ([]Event, error) {
		found := false
		kept := doc.Notices[:0]
		for _, n := range doc.Notices {
			if n.NoticeID == noticeID {
				found = true
				continue
			}
			kept = append(kept, n)
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrNoticeNotFound, noticeID)
		}
		doc.Notices = kept

		return []Event{{Type: EventNoticeDeleted, EntityID: noticeID}}, nil
	})
}
