package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a zero primary key so inserts work on drivers without
// gen_random_uuid().
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (c *CartItem) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (a *PaymentAttempt) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

func (q *Question) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

func (s *Song) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}

func (a *Album) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
