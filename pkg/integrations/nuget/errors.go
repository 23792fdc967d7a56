package nuget

import (
	"fmt"

	"github.com/matzehuels/depends/pkg/integrations"
)

var (
	errNoRegistration   = fmt.Errorf("%w: feed has no RegistrationsBaseUrl resource", integrations.ErrNetwork)
	errVersionNotListed = fmt.Errorf("%w: version not in registration", integrations.ErrNotFound)
)
