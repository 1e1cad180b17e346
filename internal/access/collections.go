package access

// Nombres de colección (también se usan como slug en logs/métricas).
const (
	CollectionUsers       = "users"
	CollectionPosts       = "posts"
	CollectionEvents      = "events"
	CollectionCases       = "cases"
	CollectionSubmissions = "form-submissions"
	CollectionMedia       = "media"
)

// Campos con reglas propias.
const (
	FieldRole          = "role"
	FieldName          = "name"
	FieldPassword      = "password"
	FieldMediatorNotes = "mediatorNotes"
	FieldStorageKey    = "storageKey"
)

var Users = Policy{
	Collection: CollectionUsers,
	Create:     AdminOnly,
	Read:       CanManageUsers,
	Update:     CanManageUsers,
	Delete:     AdminOnly,
	Fields: map[string]FieldPolicy{
		FieldRole:     {Write: adminField},
		FieldName:     {Write: CanEditAccount},
		FieldPassword: {Write: CanEditAccount},
	},
}

var Posts = Policy{
	Collection: CollectionPosts,
	Create:     StaffOnly,
	Read:       PublishedOrAssigned(RelAuthors),
	Update:     AssignedOrStaff(RelAuthors),
	Delete:     StaffOnly,
}

var Events = Policy{
	Collection: CollectionEvents,
	Create:     StaffOnly,
	Read:       PublishedOrAssigned(RelHosts),
	Update:     AssignedOrStaff(RelHosts),
	Delete:     StaffOnly,
}

var Cases = Policy{
	Collection: CollectionCases,
	Create:     StaffOnly,
	Read:       AssignedOrStaff(RelMediators, RelParticipants),
	Update:     AssignedOrStaff(RelMediators),
	Delete:     AdminOnly,
	Fields: map[string]FieldPolicy{
		FieldMediatorNotes: {Read: CanReadMediatorNotes, Write: CanReadMediatorNotes},
	},
}

var Submissions = Policy{
	Collection: CollectionSubmissions,
	Create:     Public,
	Read:       StaffOnly,
	Update:     StaffOnly,
	Delete:     AdminOnly,
}

var Media = Policy{
	Collection: CollectionMedia,
	Create:     StaffOnly,
	Read:       Public,
	Update:     StaffOnly,
	Delete:     AdminOnly,
	Fields: map[string]FieldPolicy{
		FieldStorageKey: {Read: staffField},
	},
}
