package types

type MembershipStatus string

const (
	MembershipStatusActive MembershipStatus = "Active"
	MembershipStatusFrozen MembershipStatus = "Frozen"
	MembershipStatusExpired MembershipStatus = "Expired"
	// MembershipStatusCancelled is accepted on records edited outside the
	// lifecycle engine; the engine itself never produces it.
	MembershipStatusCancelled MembershipStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusPending PaymentStatus = "Pending"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleStaff UserRole = "Staff"
)

type VisitorStatus string

// Visitor pipeline states as the desk uses them.
const (
	VisitorStatusFollowUp      VisitorStatus = "Follow-up"
	VisitorStatusJoined        VisitorStatus = "Joined"
	VisitorStatusNotInterested VisitorStatus = "Not Interested"
)
