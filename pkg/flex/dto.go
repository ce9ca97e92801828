package flex

// ==================== 报表 ====================

// Report 自定义报表
type Report struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ==================== 联系人 ====================

// Contact Flex 联系人 (个人或机构)
type Contact struct {
	ID            string  `json:"id"`
	Name          *string `json:"name"`
	Company       *string `json:"company"`
	JobTitle      *string `json:"jobTitle"`
	Email         *string `json:"email"`
	ResourceTypes *string `json:"resourceTypes"`
	Organization  bool    `json:"organization"`
}

// ContactQuery 联系人搜索条件
type ContactQuery struct {
	SearchText        string
	OnlyOrganizations bool
	Page              int
	Size              int
}

// ContactSearchResult 分页结果
type ContactSearchResult struct {
	Empty            bool      `json:"empty"`
	First            bool      `json:"first"`
	Last             bool      `json:"last"`
	Number           int       `json:"number"`
	NumberOfElements int       `json:"numberOfElements"`
	Size             int       `json:"size"`
	TotalElements    int       `json:"totalElements"`
	TotalPages       int       `json:"totalPages"`
	Content          []Contact `json:"content"`
}

// ResourceTypeRef 资源类型引用
type ResourceTypeRef struct {
	ID string `json:"id"`
}

// InternetAddress 邮箱等网络地址
type InternetAddress struct {
	Name            string `json:"name"`
	CreatedByUserID string `json:"createdByUserId"`
	URL             string `json:"url"`
	DefaultEmail    bool   `json:"defaultEmail"`
}

// PhoneNumber 电话
type PhoneNumber struct {
	Name            string `json:"name"`
	CreatedByUserID string `json:"createdByUserId"`
	DialNumber      string `json:"dialNumber"`
	DefaultPhone    bool   `json:"defaultPhone"`
	DefaultFax      bool   `json:"defaultFax"`
}

// CreateContactRequest 创建联系人请求
type CreateContactRequest struct {
	CreatedByUserID      string            `json:"createdByUserId"`
	FirstName            string            `json:"firstName,omitempty"`
	LastName             string            `json:"lastName,omitempty"`
	Organization         bool              `json:"organization"`
	Company              *string           `json:"company"`
	DefaultBillToContact bool              `json:"defaultBillToContact"`
	InternetAddresses    []InternetAddress `json:"internetAddresses,omitempty"`
	PhoneNumbers         []PhoneNumber     `json:"phoneNumbers,omitempty"`
	ResourceTypes        []ResourceTypeRef `json:"resourceTypes"`
}

// ==================== 工单 ====================

// CreateElementRequest 创建工单请求
type CreateElementRequest struct {
	DefinitionID          string             `json:"definitionId"`
	Open                  bool               `json:"open"`
	Name                  string             `json:"name"`
	StatusID              string             `json:"statusId"`
	PlannedStartDate      string             `json:"plannedStartDate"`
	PlannedEndDate        string             `json:"plannedEndDate"`
	PersonResponsibleID   string             `json:"personResponsibleId"`
	AssignedToUserID      string             `json:"assignedToUserId"`
	ReferralSourceID      *string            `json:"referralSourceId"`
	LocationID            string             `json:"locationId"`
	PickupLocationID      *string            `json:"pickupLocationId"`
	DepartmentID          string             `json:"departmentId"`
	ClientID              string             `json:"clientId"`
	BillToID              string             `json:"billToId"`
	VenueID               *string            `json:"venueId"`
	ProjectManagerID      *string            `json:"projectManagerId"`
	LoadInDate            *string            `json:"loadInDate"`
	LoadOutDate           *string            `json:"loadOutDate"`
	DefaultTime           int                `json:"defaultTime"`
	DefaultPricingModelID string             `json:"defaultPricingModelId"`
	Notes                 *string            `json:"notes"`
	PrintNotes            bool               `json:"printNotes"`
	CustomerPO            *string            `json:"customerPO"`
	Deposit               int                `json:"deposit"`
	ColorCode             string             `json:"colorCode"`
	TextColor             string             `json:"textColor"`
	ShippingMethodID      *string            `json:"shippingMethodId"`
	ReturnMethodID        *string            `json:"returnMethodId"`
	CustomField1Value     *string            `json:"customField1Value"`
	CustomField8Value     *string            `json:"customField8Value"`
	CustomField9Value     *string            `json:"customField9Value"`
	CustomFieldValues     map[string]*string `json:"customFieldValues"`
}

// Element 工单创建结果
type Element struct {
	ElementID string `json:"elementId"`
	Name      string `json:"name"`
}

// HeaderUpdateRequest 表头字段更新
type HeaderUpdateRequest struct {
	FieldType     string  `json:"fieldType"`
	PayloadValue  string  `json:"payloadValue"`
	DisplayValue  string  `json:"displayValue"`
	CustomFieldID *string `json:"customFieldId"`
}
