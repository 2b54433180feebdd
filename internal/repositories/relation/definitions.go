package relation

import (
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/verzoeken/pkg/database"
	"github.com/Ramsey-B/verzoeken/pkg/models"
)

var ObjectVerzoeken = Definition[models.ObjectVerzoek]{
	Name:              "objectverzoek",
	Table:             "object_verzoeken",
	CounterpartColumn: "object",
	Columns:           []string{"uuid", "verzoek_uuid", "object", "object_type"},
	Values: func(o models.ObjectVerzoek) []any {
		return []any{o.UUID, o.Verzoek, o.Object, o.ObjectType}
	},
	UniqueFields: []string{"verzoek", "object"},
}

var VerzoekInformatieObjecten = Definition[models.VerzoekInformatieObject]{
	Name:              "verzoekinformatieobject",
	Table:             "verzoek_informatieobjecten",
	CounterpartColumn: "informatieobject",
	Columns:           []string{"uuid", "verzoek_uuid", "informatieobject"},
	Values: func(v models.VerzoekInformatieObject) []any {
		return []any{v.UUID, v.Verzoek, v.Informatieobject}
	},
	UniqueFields: []string{"verzoek", "informatieobject"},
}

var VerzoekContactMomenten = Definition[models.VerzoekContactMoment]{
	Name:              "verzoekcontactmoment",
	Table:             "verzoek_contactmomenten",
	CounterpartColumn: "contactmoment",
	Columns:           []string{"uuid", "verzoek_uuid", "contactmoment"},
	Values: func(v models.VerzoekContactMoment) []any {
		return []any{v.UUID, v.Verzoek, v.Contactmoment}
	},
	UniqueFields: []string{"verzoek", "contactmoment"},
}

var VerzoekProducten = Definition[models.VerzoekProduct]{
	Name:              "verzoekproduct",
	Table:             "verzoek_producten",
	CounterpartColumn: "product",
	Columns:           []string{"uuid", "verzoek_uuid", "product", "product_code"},
	Values: func(v models.VerzoekProduct) []any {
		return []any{v.UUID, v.Verzoek, v.Product, v.ProductCode}
	},
	UniqueFields: []string{"verzoek", "product"},
}

var KlantVerzoeken = Definition[models.KlantVerzoek]{
	Name:              "klantverzoek",
	Table:             "klant_verzoeken",
	CounterpartColumn: "klant",
	Columns:           []string{"uuid", "verzoek_uuid", "klant", "rol", "indicatie_machtiging"},
	Values: func(k models.KlantVerzoek) []any {
		return []any{k.UUID, k.Verzoek, k.Klant, k.Rol, k.IndicatieMachtiging}
	},
	UniqueFields: []string{"verzoek", "klant"},
}

func NewObjectVerzoeken(db database.DB, logger ectologger.Logger) *Repository[models.ObjectVerzoek] {
	return New(ObjectVerzoeken, db, logger)
}

func NewVerzoekInformatieObjecten(db database.DB, logger ectologger.Logger) *Repository[models.VerzoekInformatieObject] {
	return New(VerzoekInformatieObjecten, db, logger)
}

func NewVerzoekContactMomenten(db database.DB, logger ectologger.Logger) *Repository[models.VerzoekContactMoment] {
	return New(VerzoekContactMomenten, db, logger)
}

func NewVerzoekProducten(db database.DB, logger ectologger.Logger) *Repository[models.VerzoekProduct] {
	return New(VerzoekProducten, db, logger)
}

func NewKlantVerzoeken(db database.DB, logger ectologger.Logger) *Repository[models.KlantVerzoek] {
	return New(KlantVerzoeken, db, logger)
}
