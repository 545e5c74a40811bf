package rbac

import (
	"sync"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"

	"github.com/patwikx/rgroup-lms-sub000/internal/domain"
)

type Service interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
	mu       sync.Mutex
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{enforcer: enforcer, logger: l}
	if err := s.seedPolicy(); err != nil {
		return nil, err
	}
	return s, nil
}

// rolePolicies is the fixed permission matrix. Roles are static in this
// system, so the policy ships with the binary instead of a policy table.
var rolePolicies = map[string][][2]string{
	domain.RoleEmployee: {
		{"leave", "create"}, {"leave", "read"}, {"leave", "cancel"},
		{"overtime", "create"}, {"overtime", "read"}, {"overtime", "cancel"},
		{"balance", "read_own"},
		{"leave_type", "read"},
	},
	domain.RoleSupervisor: {
		{"leave", "approve"},
		{"overtime", "approve"},
		{"employee", "read"},
	},
	domain.RoleManager: {
		{"leave", "approve"},
		{"overtime", "approve"},
		{"employee", "read"},
	},
	domain.RoleHR: {
		{"leave", "approve"}, {"leave", "pmd"},
		{"overtime", "approve"}, {"overtime", "cancel_any"},
		{"balance", "read"}, {"balance", "replenish"},
		{"employee", "read"}, {"employee", "create"},
		{"leave_type", "read"},
	},
}

// roleInherits widens non-employee roles to everything an employee may do.
var roleInherits = map[string]string{
	domain.RoleSupervisor: domain.RoleEmployee,
	domain.RoleManager:    domain.RoleEmployee,
	domain.RoleHR:         domain.RoleEmployee,
}

func (s *service) seedPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	for role, perms := range rolePolicies {
		for _, p := range perms {
			if _, err := s.enforcer.AddPolicy(role, p[0], p[1]); err != nil {
				return err
			}
		}
	}
	for role, parent := range roleInherits {
		if _, err := s.enforcer.AddGroupingPolicy(role, parent); err != nil {
			return err
		}
	}

	s.logger.Info("rbac policy seeded", zap.Int("roles", len(rolePolicies)))
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed, err := s.enforcer.Enforce(req.Role, req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("employee_id", req.EmployeeID),
			zap.String("role", req.Role),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce result",
		zap.String("employee_id", req.EmployeeID),
		zap.String("role", req.Role),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)

	return allowed, nil
}
