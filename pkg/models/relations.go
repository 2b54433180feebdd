package models

import "github.com/google/uuid"

type ObjectType string

const (
	ObjectTypeZaak ObjectType = "zaak"
)

type KlantRol string

const (
	KlantRolBelanghebbende KlantRol = "belanghebbende"
	KlantRolInitiator      KlantRol = "initiator"
	KlantRolGemachtigde    KlantRol = "gemachtigde"
)

type IndicatieMachtiging string

const (
	IndicatieMachtigingGemachtigde     IndicatieMachtiging = "gemachtigde"
	IndicatieMachtigingMachtiginggever IndicatieMachtiging = "machtiginggever"
)

// ObjectVerzoek links a verzoek to an object (a zaak) in another API.
type ObjectVerzoek struct {
	ID         int64      `db:"id"`
	UUID       uuid.UUID  `db:"uuid"`
	Verzoek    uuid.UUID  `db:"verzoek_uuid"`
	Object     string     `db:"object"`
	ObjectType ObjectType `db:"object_type"`
}

// VerzoekInformatieObject links a verzoek to a document. It is mirrored in the documents API.
type VerzoekInformatieObject struct {
	ID               int64     `db:"id"`
	UUID             uuid.UUID `db:"uuid"`
	Verzoek          uuid.UUID `db:"verzoek_uuid"`
	Informatieobject string    `db:"informatieobject"`
}

type VerzoekContactMoment struct {
	ID            int64     `db:"id"`
	UUID          uuid.UUID `db:"uuid"`
	Verzoek       uuid.UUID `db:"verzoek_uuid"`
	Contactmoment string    `db:"contactmoment"`
}

// VerzoekProduct references a product by url, by product code, or both.
type VerzoekProduct struct {
	ID          int64     `db:"id"`
	UUID        uuid.UUID `db:"uuid"`
	Verzoek     uuid.UUID `db:"verzoek_uuid"`
	Product     string    `db:"product"`
	ProductCode string    `db:"product_code"`
}

type KlantVerzoek struct {
	ID                  int64               `db:"id"`
	UUID                uuid.UUID           `db:"uuid"`
	Verzoek             uuid.UUID           `db:"verzoek_uuid"`
	Klant               string              `db:"klant"`
	Rol                 KlantRol            `db:"rol"`
	IndicatieMachtiging IndicatieMachtiging `db:"indicatie_machtiging"`
}

// RelationFilter narrows relation listings. Counterpart matches the remote reference column
// (object, informatieobject, contactmoment, product or klant).
type RelationFilter struct {
	Verzoek     *uuid.UUID
	Counterpart string
	ProductCode string
	Exclude     []uuid.UUID
	Page        Page
}
