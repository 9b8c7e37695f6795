package rbac

import (
	"sync"

	"agency-hr/internal/domain"

	"github.com/casbin/casbin/v2"
)

//go:generate mockgen -source=rbac_service.go -destination=mock/rbac_service_mock.go -package=mock
type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.Mutex
}

// grant is one role -> resource:action permission.
type grant struct {
	role     string
	resource string
	action   string
}

// The role set is fixed (admin, manager, employee), so grants live in
// code rather than a policy table. employee:delete is intentionally
// granted to every role: the original system lets any authenticated user
// delete a plain employee, and the record-level gate in the employee
// service restricts deleting managers and protected accounts.
var roleGrants = []grant{
	{domain.RoleEmployee, "leave", "create"},
	{domain.RoleEmployee, "leave", "read"},
	{domain.RoleEmployee, "employee", "read"},
	{domain.RoleEmployee, "employee", "delete"},
	{domain.RoleEmployee, "department", "read"},

	{domain.RoleManager, "leave", "approve"},
	{domain.RoleManager, "employee", "write"},
	{domain.RoleManager, "department", "write"},
	{domain.RoleManager, "report", "export"},
}

func NewService(enforcer *casbin.Enforcer) (Service, error) {
	s := &service{enforcer: enforcer}
	if err := s.loadPolicies(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) loadPolicies() error {
	s.enforcer.ClearPolicy()

	for _, g := range roleGrants {
		if _, err := s.enforcer.AddPolicy(g.role, g.resource, g.action); err != nil {
			return err
		}
	}

	// manager covers everything an employee may do; admin covers manager.
	if _, err := s.enforcer.AddGroupingPolicy(domain.RoleManager, domain.RoleEmployee); err != nil {
		return err
	}
	if _, err := s.enforcer.AddGroupingPolicy(domain.RoleAdmin, domain.RoleManager); err != nil {
		return err
	}

	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enforcer.Enforce(req.Role, req.Resource, req.Action)
}
