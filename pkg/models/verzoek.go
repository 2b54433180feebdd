package models

import (
	"time"

	"github.com/google/uuid"
)

type VerzoekStatus string

const (
	VerzoekStatusOntvangen     VerzoekStatus = "ontvangen"
	VerzoekStatusInBehandeling VerzoekStatus = "in_behandeling"
	VerzoekStatusAfgehandeld   VerzoekStatus = "afgehandeld"
	VerzoekStatusAfgewezen     VerzoekStatus = "afgewezen"
	VerzoekStatusIngetrokken   VerzoekStatus = "ingetrokken"
)

// Verzoek is a request filed by a client with an organization.
type Verzoek struct {
	ID                   int64         `db:"id"`
	UUID                 uuid.UUID     `db:"uuid"`
	Bronorganisatie      string        `db:"bronorganisatie"`
	Registratiedatum     time.Time     `db:"registratiedatum"`
	Tekst                string        `db:"tekst"`
	Voorkeurskanaal      string        `db:"voorkeurskanaal"`
	Identificatie        string        `db:"identificatie"`
	ExterneIdentificatie string        `db:"externe_identificatie"`
	Status               VerzoekStatus `db:"status"`
	// InTeTrekkenVerzoek is the verzoek this one withdraws.
	InTeTrekkenVerzoek *uuid.UUID `db:"in_te_trekken_verzoek_uuid"`
	// AangevuldeVerzoek is the verzoek this one supplements.
	AangevuldeVerzoek *uuid.UUID `db:"aangevulde_verzoek_uuid"`

	// Reverse links, derived from the forward links of other verzoeken.
	IntrekkendeVerzoek *uuid.UUID `db:"-"`
	AanvullendeVerzoek *uuid.UUID `db:"-"`
}

// VerzoekFilter holds exact-match filters; empty fields are ignored.
type VerzoekFilter struct {
	Bronorganisatie      string
	Identificatie        string
	ExterneIdentificatie string
	Status               VerzoekStatus
	Voorkeurskanaal      string
	Tekst                string

	Registratiedatum    *time.Time
	RegistratiedatumGT  *time.Time
	RegistratiedatumGTE *time.Time
	RegistratiedatumLT  *time.Time
	RegistratiedatumLTE *time.Time

	InTeTrekkenVerzoek *uuid.UUID
	IntrekkendeVerzoek *uuid.UUID
	AangevuldeVerzoek  *uuid.UUID
	AanvullendeVerzoek *uuid.UUID

	Page Page
}
