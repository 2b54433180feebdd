package relation

import (
	"github.com/google/uuid"

	"github.com/Ramsey-B/verzoeken/pkg/models"
	"github.com/Ramsey-B/verzoeken/pkg/urls"
)

var ObjectVerzoekAccessors = Accessors[models.ObjectVerzoek]{
	UUID:    func(o models.ObjectVerzoek) uuid.UUID { return o.UUID },
	Verzoek: func(o models.ObjectVerzoek) uuid.UUID { return o.Verzoek },
	WithUUID: func(o models.ObjectVerzoek, id uuid.UUID) models.ObjectVerzoek {
		o.UUID = id
		return o
	},
}

var VerzoekInformatieObjectAccessors = Accessors[models.VerzoekInformatieObject]{
	UUID:    func(v models.VerzoekInformatieObject) uuid.UUID { return v.UUID },
	Verzoek: func(v models.VerzoekInformatieObject) uuid.UUID { return v.Verzoek },
	WithUUID: func(v models.VerzoekInformatieObject, id uuid.UUID) models.VerzoekInformatieObject {
		v.UUID = id
		return v
	},
}

var VerzoekContactMomentAccessors = Accessors[models.VerzoekContactMoment]{
	UUID:    func(v models.VerzoekContactMoment) uuid.UUID { return v.UUID },
	Verzoek: func(v models.VerzoekContactMoment) uuid.UUID { return v.Verzoek },
	WithUUID: func(v models.VerzoekContactMoment, id uuid.UUID) models.VerzoekContactMoment {
		v.UUID = id
		return v
	},
}

var VerzoekProductAccessors = Accessors[models.VerzoekProduct]{
	UUID:    func(v models.VerzoekProduct) uuid.UUID { return v.UUID },
	Verzoek: func(v models.VerzoekProduct) uuid.UUID { return v.Verzoek },
	WithUUID: func(v models.VerzoekProduct, id uuid.UUID) models.VerzoekProduct {
		v.UUID = id
		return v
	},
}

var KlantVerzoekAccessors = Accessors[models.KlantVerzoek]{
	UUID:    func(k models.KlantVerzoek) uuid.UUID { return k.UUID },
	Verzoek: func(k models.KlantVerzoek) uuid.UUID { return k.Verzoek },
	WithUUID: func(k models.KlantVerzoek, id uuid.UUID) models.KlantVerzoek {
		k.UUID = id
		return k
	},
}

// VerzoekContactMomentConfig and KlantVerzoekConfig need nothing beyond the shared rules.
var VerzoekContactMomentConfig = Config[models.VerzoekContactMoment]{
	Resource:   "verzoekcontactmoment",
	Collection: urls.CollectionVerzoekContactMomenten,
	Accessors:  VerzoekContactMomentAccessors,
}

var KlantVerzoekConfig = Config[models.KlantVerzoek]{
	Resource:   "klantverzoek",
	Collection: urls.CollectionKlantVerzoeken,
	Accessors:  KlantVerzoekAccessors,
}
